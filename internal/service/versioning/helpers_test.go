package versioning

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	models "quill/internal/domain/models/versioning"
	versioningRepo "quill/internal/domain/repositories/versioning"
	versioningSvc "quill/internal/domain/services/versioning"
	"quill/internal/metrics"
	"quill/internal/repository/memory"
	"quill/internal/service/auth"
	"quill/internal/service/versioning/converter"
	"quill/internal/templates"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	ownerID = "owner-1"
	otherID = "someone-else"
)

type testEnv struct {
	store    *memory.Store
	deps     *Dependencies
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	docs     versioningSvc.DocumentService
	commits  *commitService
	restore  versioningSvc.RestoreService
	diff     versioningSvc.DiffService
	blobRepo versioningRepo.BlobRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	docRepo := memory.NewDocumentRepository(store)
	blobRepo := memory.NewBlobRepository(store)

	deps := &Dependencies{
		DocRepo:    docRepo,
		CommitRepo: memory.NewCommitRepository(store),
		TxManager:  memory.NewTransactionManager(store),
		Decomposer: NewBlockDecomposer(),
		Blobs:      NewBlobStore(blobRepo, NewHasher(), m, logger),
		Trees:      NewTreeStore(memory.NewTreeRepository(store)),
		Authorizer: auth.NewOwnerBasedAuthorizer(docRepo),
		Metrics:    m,
		Logger:     logger,
	}

	catalog, err := templates.NewRegistry()
	require.NoError(t, err)

	return &testEnv{
		store:    store,
		deps:     deps,
		metrics:  m,
		registry: reg,
		docs:     NewDocumentService(deps, catalog, converter.NewHTMLConverter()),
		commits:  newCommitService(deps),
		restore:  NewRestoreService(deps),
		diff:     NewDiffService(deps),
		blobRepo: blobRepo,
	}
}

// paragraphs builds a document with one paragraph per text
func paragraphs(texts ...string) json.RawMessage {
	blocks := make([]string, len(texts))
	for i, text := range texts {
		blocks[i] = `{"type":"paragraph","content":[{"type":"text","text":"` + text + `"}]}`
	}
	return json.RawMessage(`{"type":"doc","content":[` + strings.Join(blocks, ",") + `]}`)
}

func (e *testEnv) createDocument(t *testing.T, content json.RawMessage) *models.Document {
	t.Helper()
	doc, err := e.docs.CreateDocument(context.Background(), &versioningSvc.CreateDocumentRequest{
		UserID:         ownerID,
		Title:          "Notes",
		InitialContent: content,
	})
	require.NoError(t, err)
	return doc
}

func (e *testEnv) commit(t *testing.T, docID string, content json.RawMessage) *models.Commit {
	t.Helper()
	c, err := e.commits.Commit(context.Background(), &versioningSvc.CommitRequest{
		DocumentID: docID,
		AuthorID:   ownerID,
		Content:    content,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) currentCommitID(t *testing.T, docID string) string {
	t.Helper()
	doc, err := e.deps.DocRepo.GetByID(context.Background(), docID)
	require.NoError(t, err)
	require.NotNil(t, doc.CurrentCommitID)
	return *doc.CurrentCommitID
}
