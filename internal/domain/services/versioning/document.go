package versioning

import (
	"context"
	"encoding/json"

	"quill/internal/domain/models/versioning"
)

// DocumentService handles versioned document lifecycle
type DocumentService interface {
	// CreateDocument creates a document and its root commit atomically
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*versioning.Document, error)

	// GetDocument retrieves a document
	// userID is used for authorization check
	GetDocument(ctx context.Context, userID, documentID string) (*versioning.Document, error)

	// GetCurrentContent reconstructs the document at its current commit
	// userID is used for authorization check
	GetCurrentContent(ctx context.Context, userID, documentID string) (json.RawMessage, error)

	// RemoveDocument deletes a document and all of its history
	// userID is used for authorization check
	RemoveDocument(ctx context.Context, userID, documentID string) error

	// ListTemplates returns the template gallery
	ListTemplates() []versioning.Template
}

// CreateDocumentRequest represents a document creation request.
// InitialContent takes precedence over TemplateID.
type CreateDocumentRequest struct {
	UserID         string          `json:"-"` // Set by handler from auth context, not from request body
	Title          string          `json:"title"`
	InitialContent json.RawMessage `json:"initial_content,omitempty"`
	TemplateID     string          `json:"template_id,omitempty"`
}
