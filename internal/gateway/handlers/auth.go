package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/backend/docservice"
	"github.com/relaydocs/relaygw/internal/gateway/server/http/middleware"
	"github.com/relaydocs/relaygw/internal/observability"
)

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// LockoutTracker tracks failed logins per username and address.
type LockoutTracker interface {
	IsLocked(ctx context.Context, username, address string) bool
	RecordFailure(ctx context.Context, username, address string) bool
	ClearFailures(ctx context.Context, username, address string)
}

// credentialsRequest is the signup and login body.
type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

func (r credentialsRequest) credentials() docservice.Credentials {
	return docservice.Credentials{Username: r.Username, Password: r.Password}
}

// TokenResponse is returned by signup and login.
type TokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// AuthHandler serves /api/v1/auth.
type AuthHandler struct {
	client  docservice.Client
	issuer  TokenIssuer
	lockout LockoutTracker
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuthHandler creates the auth routes handler.
func NewAuthHandler(
	client docservice.Client,
	issuer TokenIssuer,
	lockout LockoutTracker,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *AuthHandler {
	useJSONFieldNames()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		client:  client,
		issuer:  issuer,
		lockout: lockout,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts the routes on group.
func (h *AuthHandler) Register(group gin.IRoutes) {
	group.POST("/signup", h.Signup)
	group.POST("/login", h.Login)
}

// Signup creates an account and returns a session token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err, MessageInvalidRequest)
		return
	}

	user, err := h.client.Signup(c.Request.Context(), req.credentials())
	if err != nil {
		respondError(c, h.logger, err, MessageInvalidRequest)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user.UserID)
}

// Login verifies credentials under the lockout policy and returns a session
// token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err, MessageInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	address := middleware.ClientIPKey(c)

	if h.lockout.IsLocked(ctx, req.Username, address) {
		h.logger.Info("login rejected, account locked",
			zap.String("address", address),
			zap.String("requestID", middleware.GetRequestID(c)),
		)
		c.JSON(http.StatusTooManyRequests, gin.H{"message": MessageAccountLocked})
		return
	}

	user, err := h.client.Login(ctx, req.credentials())
	if err != nil {
		if de, ok := docservice.AsDownstreamError(err); ok && de.StatusCode == http.StatusUnauthorized {
			if h.lockout.RecordFailure(ctx, req.Username, address) {
				c.JSON(http.StatusTooManyRequests, gin.H{"message": MessageAccountLocked})
				return
			}
		}
		respondError(c, h.logger, err, MessageInvalidRequest)
		return
	}

	h.lockout.ClearFailures(ctx, req.Username, address)
	h.respondWithToken(c, http.StatusOK, user.UserID)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, userID string) {
	token, err := h.issuer.Issue(userID)
	if err != nil {
		respondError(c, h.logger, err, MessageInvalidRequest)
		return
	}
	h.metrics.RecordTokenIssued()

	c.JSON(status, TokenResponse{Token: token, UserID: userID})
}
