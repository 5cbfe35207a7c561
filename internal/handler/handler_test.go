package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"quill/internal/auth"
	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	"quill/internal/metrics"
	"quill/internal/middleware"
	"quill/internal/repository/memory"
	serviceAuth "quill/internal/service/auth"
	serviceVersioning "quill/internal/service/versioning"
	"quill/internal/service/versioning/converter"
	"quill/internal/templates"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devUser = "dev-user"

// newTestServer wires the full API over the in-memory store
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewMetrics(prometheus.NewRegistry())
	store := memory.NewStore()
	docRepo := memory.NewDocumentRepository(store)

	deps := &serviceVersioning.Dependencies{
		DocRepo:    docRepo,
		CommitRepo: memory.NewCommitRepository(store),
		TxManager:  memory.NewTransactionManager(store),
		Decomposer: serviceVersioning.NewBlockDecomposer(),
		Blobs:      serviceVersioning.NewBlobStore(memory.NewBlobRepository(store), serviceVersioning.NewHasher(), m, logger),
		Trees:      serviceVersioning.NewTreeStore(memory.NewTreeRepository(store)),
		Authorizer: serviceAuth.NewOwnerBasedAuthorizer(docRepo),
		Metrics:    m,
		Logger:     logger,
	}

	catalog, err := templates.NewRegistry()
	require.NoError(t, err)

	docHandler := NewDocumentHandler(
		serviceVersioning.NewDocumentService(deps, catalog, converter.NewHTMLConverter()),
		serviceVersioning.NewRestoreService(deps),
		logger,
	)
	commitHandler := NewCommitHandler(serviceVersioning.NewCommitService(deps), serviceVersioning.NewDiffService(deps), logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, docHandler, commitHandler)

	var h http.Handler = middleware.Metrics(m)(mux)
	h = middleware.RequireAuth("/api/", auth.NewDevVerifier(devUser, logger), logger)(h)
	return middleware.Recovery(logger)(h)
}

// tokenFor returns an unsigned token naming subject
func tokenFor(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: subject}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

type apiClient struct {
	t      *testing.T
	server http.Handler
	token  string
}

func (c *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		payload, err := json.Marshal(v)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.server.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type commitPath struct {
	Commits []models.Commit `json:"commits"`
}

func problemCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	problem := decode[map[string]interface{}](t, rec)
	code, _ := problem["code"].(string)
	return code
}

func paragraphs(texts ...string) map[string]interface{} {
	blocks := make([]interface{}, len(texts))
	for i, text := range texts {
		blocks[i] = map[string]interface{}{
			"type":    "paragraph",
			"content": []interface{}{map[string]interface{}{"type": "text", "text": text}},
		}
	}
	return map[string]interface{}{"type": "doc", "content": blocks}
}

func createDocument(t *testing.T, c *apiClient, texts ...string) models.Document {
	t.Helper()
	rec := c.do(http.MethodPost, "/api/documents", map[string]interface{}{
		"title":           "Notes",
		"initial_content": paragraphs(texts...),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Document](t, rec)
}

func TestHealthIsPublic(t *testing.T) {
	c := &apiClient{t: t, server: newTestServer(t)}

	rec := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/templates", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDocumentLifecycle(t *testing.T) {
	c := &apiClient{t: t, server: newTestServer(t), token: "dev"}

	doc := createDocument(t, c, "Hello", "World")
	assert.Equal(t, devUser, doc.OwnerID)
	require.NotNil(t, doc.CurrentCommitID)
	assert.Equal(t, doc.RootCommitID, doc.CurrentCommitID)

	rec := c.do(http.MethodGet, "/api/documents/"+doc.ID+"/content", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	content := decode[models.DocumentJSON](t, rec)
	assert.Equal(t, models.DocNodeType, content.Type)
	assert.Len(t, content.Content, 2)

	rec = c.do(http.MethodPost, "/api/documents/"+doc.ID+"/commits", map[string]interface{}{
		"content": paragraphs("Hello", "There", "World"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	second := decode[models.Commit](t, rec)
	assert.Equal(t, 2, second.CommitNumber)
	assert.Equal(t, devUser, second.AuthorID)
	require.NotNil(t, second.ParentCommitID)
	assert.Equal(t, *doc.RootCommitID, *second.ParentCommitID)

	// Same snapshot again is a soft conflict
	rec = c.do(http.MethodPost, "/api/documents/"+doc.ID+"/commits", map[string]interface{}{
		"content": paragraphs("Hello", "There", "World"),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_changes", problemCode(t, rec))

	rec = c.do(http.MethodGet, "/api/documents/"+doc.ID+"/commits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.CommitPage](t, rec)
	require.Len(t, page.Commits, 2)
	assert.Equal(t, 2, page.Commits[0].CommitNumber)
	assert.True(t, page.IsDone)

	rec = c.do(http.MethodGet, "/api/commits/"+second.ID+"/path", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	path := decode[commitPath](t, rec)
	require.Len(t, path.Commits, 2)
	assert.Equal(t, *doc.RootCommitID, path.Commits[0].ID)

	rec = c.do(http.MethodGet, "/api/commits/"+*doc.RootCommitID+"/content", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.DocumentJSON](t, rec).Content, 2)

	// Restore the root commit
	rec = c.do(http.MethodPost, "/api/documents/"+doc.ID+"/restore", map[string]string{"commit_id": *doc.RootCommitID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	restored := decode[models.Document](t, rec)
	assert.Equal(t, *doc.RootCommitID, *restored.CurrentCommitID)

	rec = c.do(http.MethodDelete, "/api/documents/"+doc.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, "/api/documents/"+doc.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "document_not_found", problemCode(t, rec))

	rec = c.do(http.MethodGet, "/api/commits/"+second.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "commit_not_found", problemCode(t, rec))
}

func TestCommitCurrentContentRoundTrip(t *testing.T) {
	c := &apiClient{t: t, server: newTestServer(t), token: "dev"}
	doc := createDocument(t, c, "a<b & c>d")

	rec := c.do(http.MethodGet, "/api/documents/"+doc.ID+"/content", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `a<b & c>d`)

	body := `{"content":` + rec.Body.String() + `}`
	rec = c.do(http.MethodPost, "/api/documents/"+doc.ID+"/commits", body)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, "no_changes", problemCode(t, rec))
}

func TestOwnerOnlyRoutes(t *testing.T) {
	server := newTestServer(t)
	owner := &apiClient{t: t, server: server, token: tokenFor(t, "owner")}
	intruder := &apiClient{t: t, server: server, token: tokenFor(t, "intruder")}

	doc := createDocument(t, owner, "Secret")
	assert.Equal(t, "owner", doc.OwnerID)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/documents/" + doc.ID},
		{http.MethodGet, "/api/documents/" + doc.ID + "/content"},
		{http.MethodGet, "/api/documents/" + doc.ID + "/commits"},
		{http.MethodDelete, "/api/documents/" + doc.ID},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := intruder.do(tt.method, tt.path, nil)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "forbidden", problemCode(t, rec))
		})
	}

	// Collaborators may still commit
	rec := intruder.do(http.MethodPost, "/api/documents/"+doc.ID+"/commits", map[string]interface{}{
		"content": paragraphs("Secret", "Edited"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "intruder", decode[models.Commit](t, rec).AuthorID)
}

func TestErrorResponses(t *testing.T) {
	c := &apiClient{t: t, server: newTestServer(t), token: "dev"}
	doc := createDocument(t, c, "One")
	otherDoc := createDocument(t, c, "Two")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{
			name:   "malformed document id",
			method: http.MethodGet,
			path:   "/api/documents/not-a-uuid",
			status: http.StatusNotFound,
			code:   "document_not_found",
		},
		{
			name:   "unknown commit",
			method: http.MethodGet,
			path:   fmt.Sprintf("/api/commits/%s", "00000000-0000-0000-0000-000000000000"),
			status: http.StatusNotFound,
			code:   "commit_not_found",
		},
		{
			name:   "invalid body",
			method: http.MethodPost,
			path:   "/api/documents",
			body:   "{not json",
			status: http.StatusBadRequest,
			code:   "invalid_body",
		},
		{
			name:   "empty commit name",
			method: http.MethodPatch,
			path:   "/api/commits/" + *doc.RootCommitID,
			body:   map[string]string{"name": "   "},
			status: http.StatusBadRequest,
			code:   "empty_name",
		},
		{
			name:   "restore foreign commit",
			method: http.MethodPost,
			path:   "/api/documents/" + doc.ID + "/restore",
			body:   map[string]string{"commit_id": *otherDoc.RootCommitID},
			status: http.StatusBadRequest,
			code:   "commit_document_mismatch",
		},
		{
			name:   "restore without commit",
			method: http.MethodPost,
			path:   "/api/documents/" + doc.ID + "/restore",
			body:   map[string]string{},
			status: http.StatusBadRequest,
			code:   "validation_failed",
		},
		{
			name:   "malformed content",
			method: http.MethodPost,
			path:   "/api/documents/" + doc.ID + "/commits",
			body:   map[string]interface{}{"content": "just a string"},
			status: http.StatusBadRequest,
			code:   "malformed_content",
		},
		{
			name:   "non-numeric limit",
			method: http.MethodGet,
			path:   "/api/documents/" + doc.ID + "/commits?limit=ten",
			status: http.StatusBadRequest,
			code:   "validation_failed",
		},
		{
			name:   "unknown template",
			method: http.MethodPost,
			path:   "/api/documents",
			body:   map[string]string{"template_id": "does-not-exist"},
			status: http.StatusBadRequest,
			code:   "template_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, problemCode(t, rec))
		})
	}
}

func TestRenameCommit(t *testing.T) {
	c := &apiClient{t: t, server: newTestServer(t), token: "dev"}
	doc := createDocument(t, c, "One")

	rec := c.do(http.MethodPatch, "/api/commits/"+*doc.RootCommitID, map[string]string{"name": "First draft"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "First draft", decode[models.Commit](t, rec).Name)
}

func TestCompareCommit(t *testing.T) {
	c := &apiClient{t: t, server: newTestServer(t), token: "dev"}
	doc := createDocument(t, c, "Hello", "World")

	rec := c.do(http.MethodPost, "/api/commits/"+*doc.RootCommitID+"/diff", map[string]interface{}{
		"content": paragraphs("Hello", "There", "World"),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cmp := decode[models.Comparison](t, rec)
	assert.Equal(t, *doc.RootCommitID, cmp.BaseCommitID)
	require.Len(t, cmp.Additions, 1)
	assert.Equal(t, "There", cmp.Additions[0].Text)
	assert.Empty(t, cmp.Deletions)
}

func TestListTemplates(t *testing.T) {
	c := &apiClient{t: t, server: newTestServer(t), token: "dev"}

	rec := c.do(http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[[]models.Template](t, rec)
	require.NotEmpty(t, list)
	assert.Equal(t, "blank", list[0].ID)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNoChanges, http.StatusConflict, "no_changes"},
		{fmt.Errorf("doc x: %w", domain.ErrCurrentCommitMissing), http.StatusInternalServerError, "current_commit_missing"},
		{domain.ErrBlobMissing, http.StatusInternalServerError, "blob_missing"},
		{domain.ErrPointerConflict, http.StatusInternalServerError, "consistency_violation"},
		{domain.ErrEmptyName, http.StatusBadRequest, "empty_name"},
		{&domain.ValidationError{Message: "bad"}, http.StatusBadRequest, "validation_failed"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := classifyError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestInternalErrorsHideDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, fmt.Errorf("tree 123: %w", domain.ErrBlobMissing))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	problem := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "internal server error", problem["detail"])
	assert.Equal(t, "blob_missing", problem["code"])
}
