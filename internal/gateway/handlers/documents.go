package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/backend/docservice"
	"github.com/relaydocs/relaygw/internal/gateway/server/http/middleware"
)

var errMissingIdentity = errors.New("missing authenticated identity")

type createDocumentRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=255"`
	Content string `json:"content" binding:"required,min=1,max=100000"`
}

type updateDocumentRequest struct {
	Title   *string `json:"title" binding:"omitnil,min=1,max=255"`
	Content *string `json:"content" binding:"omitnil,min=1,max=100000"`
}

type shareDocumentRequest struct {
	UserID string `json:"userId" binding:"required,min=1"`
	Role   string `json:"role" binding:"required,oneof=viewer editor"`
}

// DocumentHandler serves /api/v1/documents. Every route expects an
// identity set by middleware.RequireAuth.
type DocumentHandler struct {
	client docservice.Client
	logger *zap.Logger
}

// NewDocumentHandler creates the document routes handler.
func NewDocumentHandler(client docservice.Client, logger *zap.Logger) *DocumentHandler {
	useJSONFieldNames()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{client: client, logger: logger}
}

// Register mounts the routes on group.
func (h *DocumentHandler) Register(group gin.IRoutes) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.Update)
	group.POST("/:id/share", h.Share)
}

func (h *DocumentHandler) userID(c *gin.Context) (string, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok || identity.UserID == "" {
		respondError(c, h.logger, errMissingIdentity, MessageInvalidRequestBody)
		return "", false
	}
	return identity.UserID, true
}

func (h *DocumentHandler) fail(c *gin.Context, err error) {
	respondError(c, h.logger, err, MessageInvalidRequestBody)
}

// List returns the caller's documents.
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	docs, err := h.client.ListDocuments(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if docs == nil {
		docs = []docservice.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// Create creates a document owned by the caller.
func (h *DocumentHandler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req createDocumentRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	doc, err := h.client.CreateDocument(c.Request.Context(), userID, docservice.CreateDocument{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// Get returns one document.
func (h *DocumentHandler) Get(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	doc, err := h.client.GetDocument(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// Update applies a partial update. At least one field must be present.
func (h *DocumentHandler) Update(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req updateDocumentRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.Title == nil && req.Content == nil {
		h.fail(c, &ValidationError{Fields: []FieldError{{
			Rule:    "required_without_all",
			Message: "At least one field must be provided",
		}}})
		return
	}

	doc, err := h.client.UpdateDocument(c.Request.Context(), userID, c.Param("id"), docservice.UpdateDocument{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// Share grants another user access to a document.
func (h *DocumentHandler) Share(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req shareDocumentRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	doc, err := h.client.ShareDocument(c.Request.Context(), userID, c.Param("id"), docservice.ShareDocument{
		UserID: req.UserID,
		Role:   docservice.Role(req.Role),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}
