package docservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/observability"
)

// maxResponseBytes caps how much of a downstream body is read.
const maxResponseBytes = 4 << 20

// Client is the set of document service operations the gateway uses.
type Client interface {
	Signup(ctx context.Context, creds Credentials) (User, error)
	Login(ctx context.Context, creds Credentials) (User, error)
	ListDocuments(ctx context.Context, userID string) ([]Document, error)
	CreateDocument(ctx context.Context, userID string, body CreateDocument) (Document, error)
	GetDocument(ctx context.Context, userID, id string) (Document, error)
	UpdateDocument(ctx context.Context, userID, id string, body UpdateDocument) (Document, error)
	ShareDocument(ctx context.Context, userID, id string, body ShareDocument) (Document, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// Option is a functional option for configuring the client.
type Option func(*HTTPClient)

// WithHTTPClient sets the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		h.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *HTTPClient) {
		h.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *HTTPClient) {
		h.metrics = m
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(DefaultPoolConfig())
	}

	return c
}

// Signup creates an account.
func (c *HTTPClient) Signup(ctx context.Context, creds Credentials) (User, error) {
	var user User
	err := c.do(ctx, "signup", http.MethodPost, "/api/v1/auth/signup", "", creds, &user)
	return user, err
}

// Login verifies credentials. A 401 DownstreamError means they were wrong.
func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (User, error) {
	var user User
	err := c.do(ctx, "login", http.MethodPost, "/api/v1/auth/login", "", creds, &user)
	return user, err
}

// ListDocuments returns the documents visible to userID.
func (c *HTTPClient) ListDocuments(ctx context.Context, userID string) ([]Document, error) {
	var resp documentsResponse
	if err := c.do(ctx, "list_documents", http.MethodGet, "/api/v1/documents", userID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// CreateDocument creates a document owned by userID.
func (c *HTTPClient) CreateDocument(ctx context.Context, userID string, body CreateDocument) (Document, error) {
	var resp documentResponse
	err := c.do(ctx, "create_document", http.MethodPost, "/api/v1/documents", userID, body, &resp)
	return resp.Document, err
}

// GetDocument fetches one document.
func (c *HTTPClient) GetDocument(ctx context.Context, userID, id string) (Document, error) {
	var resp documentResponse
	err := c.do(ctx, "get_document", http.MethodGet, documentPath(id), userID, nil, &resp)
	return resp.Document, err
}

// UpdateDocument applies a partial update.
func (c *HTTPClient) UpdateDocument(ctx context.Context, userID, id string, body UpdateDocument) (Document, error) {
	var resp documentResponse
	err := c.do(ctx, "update_document", http.MethodPatch, documentPath(id), userID, body, &resp)
	return resp.Document, err
}

// ShareDocument grants a role on a document. The role is sent upper-case.
func (c *HTTPClient) ShareDocument(ctx context.Context, userID, id string, body ShareDocument) (Document, error) {
	var resp documentResponse
	payload := shareBody{UserID: body.UserID, Role: body.Role.Upper()}
	err := c.do(ctx, "share_document", http.MethodPost, documentPath(id)+"/share", userID, payload, &resp)
	return resp.Document, err
}

func documentPath(id string) string {
	return "/api/v1/documents/" + url.PathEscape(id)
}

func (c *HTTPClient) do(
	ctx context.Context,
	operation, method, path, userID string,
	body, out any,
) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	if requestID := observability.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	observability.InjectTraceContext(ctx, req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordDownstreamRequest(operation, 0, time.Since(start))
		c.logger.Warn("document service request failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return fmt.Errorf("%s request: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.RecordDownstreamRequest(operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("document service rejected request",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
		)
		return &DownstreamError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", operation, err)
	}
	return nil
}

// errorMessage extracts a string "message" field, if any.
func errorMessage(raw []byte) string {
	var body struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if msg, ok := body.Message.(string); ok {
			return msg
		}
	}
	return DefaultErrorMessage
}
