package docservice

import "strings"

// Role is a share role granted on a document.
type Role string

// Share roles accepted by the gateway.
const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
)

// Upper returns the role as the document service spells it.
func (r Role) Upper() string {
	return strings.ToUpper(string(r))
}

// Credentials is a signup or login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the identity returned by signup and login.
type User struct {
	UserID string `json:"userId"`
}

// Document is a document as returned by the document service.
type Document struct {
	ID          string            `json:"id"`
	OwnerUserID string            `json:"ownerUserId"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	SharedWith  map[string]string `json:"sharedWith"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

// CreateDocument is the body of a create request.
type CreateDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateDocument is the body of a partial update. Nil fields are omitted.
type UpdateDocument struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// ShareDocument grants Role on a document to UserID.
type ShareDocument struct {
	UserID string
	Role   Role
}

type shareBody struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type documentResponse struct {
	Document Document `json:"document"`
}

type documentsResponse struct {
	Documents []Document `json:"documents"`
}
