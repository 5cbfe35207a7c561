package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"quill/internal/domain"
	versioningSvc "quill/internal/domain/services/versioning"
	"quill/internal/httputil"
)

// CommitHandler handles commit graph HTTP requests
type CommitHandler struct {
	commitService versioningSvc.CommitService
	diffService   versioningSvc.DiffService
	logger        *slog.Logger
}

// NewCommitHandler creates a new commit handler
func NewCommitHandler(commitService versioningSvc.CommitService, diffService versioningSvc.DiffService, logger *slog.Logger) *CommitHandler {
	return &CommitHandler{
		commitService: commitService,
		diffService:   diffService,
		logger:        logger,
	}
}

// CreateCommit snapshots the editor content on top of the current commit
// POST /api/documents/{id}/commits
// Returns 409 with code "no_changes" when the content matches the current commit
func (h *CommitHandler) CreateCommit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrDocumentNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	var req versioningSvc.CommitRequest
	if !parseBody(w, r, &req) {
		return
	}
	req.DocumentID = id
	req.AuthorID = httputil.GetUserID(r)

	commit, err := h.commitService.Commit(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, commit)
}

// ListCommits returns a page of history, newest first
// GET /api/documents/{id}/commits?cursor=&limit=
func (h *CommitHandler) ListCommits(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrDocumentNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	req := versioningSvc.ListCommitsRequest{
		Cursor: r.URL.Query().Get("cursor"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			handleError(w, &domain.ValidationError{Field: "limit", Message: "limit must be an integer"})
			return
		}
		req.Limit = limit
	}

	page, err := h.commitService.ListCommits(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// GetCommit retrieves commit metadata
// GET /api/commits/{id}
func (h *CommitHandler) GetCommit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrCommitNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	commit, err := h.commitService.GetCommit(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, commit)
}

// GetCommitContent reconstructs the document stored by a commit
// GET /api/commits/{id}/content
func (h *CommitHandler) GetCommitContent(w http.ResponseWriter, r *http.Request) {
	if httputil.GetUserID(r) == "" {
		handleError(w, domain.ErrUnauthorized)
		return
	}

	id, err := pathID(r, "id", domain.ErrCommitNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	content, err := h.commitService.Reconstruct(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, content)
}

// GetCommitPath returns the ancestry of a commit, root first
// GET /api/commits/{id}/path
func (h *CommitHandler) GetCommitPath(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrCommitNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	path, err := h.commitService.GetCommitPath(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"commits": path,
	})
}

// RenameCommit changes a commit's display name
// PATCH /api/commits/{id}
func (h *CommitHandler) RenameCommit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrCommitNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	var req versioningSvc.RenameCommitRequest
	if !parseBody(w, r, &req) {
		return
	}

	commit, err := h.commitService.RenameCommit(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, commit)
}

// CompareCommit diffs a commit against the editor buffer or another commit
// POST /api/commits/{id}/diff
func (h *CommitHandler) CompareCommit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", domain.ErrCommitNotFound)
	if err != nil {
		handleError(w, err)
		return
	}

	var req versioningSvc.CompareRequest
	if !parseBody(w, r, &req) {
		return
	}
	req.CommitID = id

	comparison, err := h.diffService.Compare(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comparison)
}
