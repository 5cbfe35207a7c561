package services

import "context"

// DocumentAuthorizer checks if a user can manage a document.
// Current implementation: ownership-based (user owns the document).
//
// Services call the authorizer before owner-only operations (history
// listing, removal). Editing and commit operations are open to any
// authenticated collaborator.
type DocumentAuthorizer interface {
	// CanManageDocument returns domain.ErrForbidden if userID does not own the document
	CanManageDocument(ctx context.Context, userID, documentID string) error
}
