package handler

import (
	"errors"
	"fmt"
	"net/http"

	"quill/internal/domain"
	"quill/internal/httputil"

	"github.com/google/uuid"
)

// handleError converts domain errors to HTTP responses.
// Every problem document carries a machine-readable "code" member.
func handleError(w http.ResponseWriter, err error) {
	status, code := classifyError(err)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		// Never leak storage details
		detail = "internal server error"
	}

	httputil.RespondProblem(w, status, code, detail)
}

// classifyError maps an error to its status code and problem code.
// Specific errors are matched before their categories.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNoChanges):
		return http.StatusConflict, "no_changes"
	case errors.Is(err, domain.ErrCurrentCommitMissing):
		return http.StatusInternalServerError, "current_commit_missing"
	case errors.Is(err, domain.ErrCurrentCommitNotFound):
		return http.StatusInternalServerError, "current_commit_not_found"
	case errors.Is(err, domain.ErrBlobMissing):
		return http.StatusInternalServerError, "blob_missing"
	case errors.Is(err, domain.ErrIntegrity):
		return http.StatusInternalServerError, "integrity_violation"
	case errors.Is(err, domain.ErrPointerConflict), errors.Is(err, domain.ErrConsistency):
		return http.StatusInternalServerError, "consistency_violation"
	case errors.Is(err, domain.ErrCommitDocumentMismatch):
		return http.StatusBadRequest, "commit_document_mismatch"
	case errors.Is(err, domain.ErrEmptyName):
		return http.StatusBadRequest, "empty_name"
	case errors.Is(err, domain.ErrMalformedContent):
		return http.StatusBadRequest, "malformed_content"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrTemplateNotFound):
		// template_id is request input, not a resource in the path
		return http.StatusBadRequest, "template_not_found"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "document_not_found"
	case errors.Is(err, domain.ErrCommitNotFound):
		return http.StatusNotFound, "commit_not_found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// pathID reads a UUID path parameter. A malformed ID cannot name any record,
// so it is reported with the notFound error of the resource.
func pathID(r *http.Request, name string, notFound error) (string, error) {
	id := r.PathValue(name)
	if id == "" {
		return "", &domain.ValidationError{Field: name, Message: fmt.Sprintf("%s is required", name)}
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%s %q: %w", name, id, notFound)
	}
	return id, nil
}

// parseBody decodes the JSON request body, answering 400 itself on failure
func parseBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	err := httputil.ParseJSON(w, r, dest)
	switch {
	case err == nil:
		return true
	case errors.Is(err, httputil.ErrBodyTooLarge):
		httputil.RespondProblem(w, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
	default:
		httputil.RespondProblem(w, http.StatusBadRequest, "invalid_body", err.Error())
	}
	return false
}
