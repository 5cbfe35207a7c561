package handler

import "net/http"

// RegisterRoutes mounts the versioning API on mux
func RegisterRoutes(mux *http.ServeMux, docHandler *DocumentHandler, commitHandler *CommitHandler) {
	// Health check
	mux.HandleFunc("GET /health", HealthCheck)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("GET /api/documents/{id}/content", docHandler.GetCurrentContent)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("POST /api/documents/{id}/restore", docHandler.RestoreCommit)

	// Commit graph routes
	mux.HandleFunc("POST /api/documents/{id}/commits", commitHandler.CreateCommit)
	mux.HandleFunc("GET /api/documents/{id}/commits", commitHandler.ListCommits)
	mux.HandleFunc("GET /api/commits/{id}", commitHandler.GetCommit)
	mux.HandleFunc("PATCH /api/commits/{id}", commitHandler.RenameCommit)
	mux.HandleFunc("GET /api/commits/{id}/content", commitHandler.GetCommitContent)
	mux.HandleFunc("GET /api/commits/{id}/path", commitHandler.GetCommitPath)
	mux.HandleFunc("POST /api/commits/{id}/diff", commitHandler.CompareCommit)

	// Template gallery
	mux.HandleFunc("GET /api/templates", docHandler.ListTemplates)
}
