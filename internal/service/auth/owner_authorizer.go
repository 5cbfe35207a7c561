package auth

import (
	"context"
	"fmt"

	"quill/internal/domain"
	versioningRepo "quill/internal/domain/repositories/versioning"
)

// OwnerBasedAuthorizer implements DocumentAuthorizer using ownership checks.
// A user can manage a document if they created it.
//
// For future extensibility:
// - SharingAuthorizer: Check if the document is shared with user
type OwnerBasedAuthorizer struct {
	docRepo versioningRepo.DocumentRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(docRepo versioningRepo.DocumentRepository) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{docRepo: docRepo}
}

// CanManageDocument checks if user owns the document.
// A missing document is reported as not found, not forbidden.
func (a *OwnerBasedAuthorizer) CanManageDocument(ctx context.Context, userID, documentID string) error {
	doc, err := a.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document for auth: %w", err)
	}

	if userID == "" {
		return fmt.Errorf("no identity: %w", domain.ErrUnauthorized)
	}
	if doc.OwnerID != userID {
		return fmt.Errorf("access denied to document %s: %w", documentID, domain.ErrForbidden)
	}
	return nil
}
