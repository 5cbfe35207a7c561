package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain"
	versioningSvc "quill/internal/domain/services/versioning"
	"quill/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService     versioningSvc.DocumentService
	restoreService versioningSvc.RestoreService
	logger         *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService versioningSvc.DocumentService, restoreService versioningSvc.RestoreService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService:     docService,
		restoreService: restoreService,
		logger:         logger,
	}
}

// CreateDocument creates a document with its root commit
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req versioningSvc.CreateDocumentRequest
	if !parseBody(w, r, &req) {
		return
	}
	req.UserID = httputil.GetUserID(r)

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrDocumentNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// GetCurrentContent returns the document JSON at the current commit
// GET /api/documents/{id}/content
func (h *DocumentHandler) GetCurrentContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrDocumentNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	content, err := h.docService.GetCurrentContent(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, content)
}

// DeleteDocument deletes a document and its whole history
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrDocumentNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.docService.RemoveDocument(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type restoreRequest struct {
	CommitID string `json:"commit_id"`
}

// RestoreCommit points the document at one of its earlier commits
// POST /api/documents/{id}/restore
func (h *DocumentHandler) RestoreCommit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrDocumentNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	var req restoreRequest
	if !parseBody(w, r, &req) {
		return
	}
	if req.CommitID == "" {
		handleError(w, &domain.ValidationError{Field: "commit_id", Message: "commit_id is required"})
		return
	}

	doc, err := h.restoreService.Restore(r.Context(), id, req.CommitID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ListTemplates returns the template gallery
// GET /api/templates
func (h *DocumentHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.docService.ListTemplates())
}
