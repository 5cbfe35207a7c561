package versioning

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"quill/internal/config"
	"quill/internal/domain"
	versioningSvc "quill/internal/domain/services/versioning"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCreateDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		req       versioningSvc.CreateDocumentRequest
		wantTitle string
		wantJSON  string
		check     func(t *testing.T, content json.RawMessage)
		wantErr   error
	}{
		{
			name:      "default title and empty paragraph",
			req:       versioningSvc.CreateDocumentRequest{UserID: ownerID, Title: "   "},
			wantTitle: config.DefaultDocumentTitle,
			wantJSON:  `{"type":"doc","content":[{"type":"paragraph"}]}`,
		},
		{
			name:      "explicit content wins over template",
			req:       versioningSvc.CreateDocumentRequest{UserID: ownerID, Title: " Plan ", InitialContent: paragraphs("x"), TemplateID: "resume"},
			wantTitle: "Plan",
			wantJSON:  string(paragraphs("x")),
		},
		{
			name:      "from template",
			req:       versioningSvc.CreateDocumentRequest{UserID: ownerID, Title: "CV", TemplateID: "resume"},
			wantTitle: "CV",
			check: func(t *testing.T, content json.RawMessage) {
				assert.Equal(t, "heading", gjson.GetBytes(content, "content.0.type").String())
				assert.Equal(t, "[Your Name]", gjson.GetBytes(content, "content.0.content.0.text").String())
			},
		},
		{
			name:    "unknown template",
			req:     versioningSvc.CreateDocumentRequest{UserID: ownerID, TemplateID: "nope"},
			wantErr: domain.ErrTemplateNotFound,
		},
		{
			name:    "title too long",
			req:     versioningSvc.CreateDocumentRequest{UserID: ownerID, Title: strings.Repeat("t", config.MaxDocumentTitleLength+1)},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing user",
			req:     versioningSvc.CreateDocumentRequest{Title: "x"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "malformed content",
			req:     versioningSvc.CreateDocumentRequest{UserID: ownerID, InitialContent: json.RawMessage(`[]`)},
			wantErr: domain.ErrMalformedContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			doc, err := env.docs.CreateDocument(ctx, &req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantTitle, doc.Title)
			require.NotNil(t, doc.RootCommitID)
			require.NotNil(t, doc.CurrentCommitID)
			assert.Equal(t, *doc.RootCommitID, *doc.CurrentCommitID)

			root, err := env.commits.GetCommit(ctx, *doc.RootCommitID)
			require.NoError(t, err)
			assert.Equal(t, 1, root.CommitNumber)
			assert.Nil(t, root.ParentCommitID)
			assert.Equal(t, RootCommitName, root.Name)
			assert.Equal(t, ownerID, root.AuthorID)

			content, err := env.docs.GetCurrentContent(ctx, ownerID, doc.ID)
			require.NoError(t, err)
			if tt.wantJSON != "" {
				assert.JSONEq(t, tt.wantJSON, string(content))
			}
			if tt.check != nil {
				tt.check(t, content)
			}
		})
	}
}

func TestDocument_OwnerOnlyOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDocument(t, nil)

	_, err := env.docs.GetDocument(ctx, otherID, doc.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.docs.GetCurrentContent(ctx, otherID, doc.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	require.ErrorIs(t, env.docs.RemoveDocument(ctx, otherID, doc.ID), domain.ErrForbidden)

	got, err := env.docs.GetDocument(ctx, ownerID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
}

func TestRemoveDocument_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDocument(t, paragraphs("a"))
	c := env.commit(t, doc.ID, paragraphs("a", "b"))

	require.NoError(t, env.docs.RemoveDocument(ctx, ownerID, doc.ID))

	_, err := env.docs.GetDocument(ctx, ownerID, doc.ID)
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)
	_, err = env.commits.GetCommit(ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrCommitNotFound)

	count, err := env.blobRepo.CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRestore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDocument(t, paragraphs("v1"))
	root := *doc.RootCommitID
	second := env.commit(t, doc.ID, paragraphs("v2"))
	third := env.commit(t, doc.ID, paragraphs("v3"))

	restored, err := env.restore.Restore(ctx, doc.ID, root)
	require.NoError(t, err)
	assert.Equal(t, root, *restored.CurrentCommitID)

	// History is untouched
	page, err := env.commits.ListCommits(ctx, ownerID, doc.ID, &versioningSvc.ListCommitsRequest{})
	require.NoError(t, err)
	require.Len(t, page.Commits, 3)
	for _, c := range []string{second.ID, third.ID} {
		content, err := env.commits.Reconstruct(ctx, c)
		require.NoError(t, err)
		assert.NotEmpty(t, content)
	}

	current, err := env.docs.GetCurrentContent(ctx, ownerID, doc.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(paragraphs("v1")), string(current))

	// Committing the restored state is a no-op; new content branches from root
	_, err = env.commits.Commit(ctx, &versioningSvc.CommitRequest{DocumentID: doc.ID, AuthorID: ownerID, Content: paragraphs("v1")})
	require.ErrorIs(t, err, domain.ErrNoChanges)

	branch := env.commit(t, doc.ID, paragraphs("v1", "branch"))
	assert.Equal(t, root, *branch.ParentCommitID)
	assert.Equal(t, 4, branch.CommitNumber)
}

func TestRestore_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.createDocument(t, nil)
	b := env.createDocument(t, nil)

	_, err := env.restore.Restore(ctx, a.ID, *b.RootCommitID)
	require.ErrorIs(t, err, domain.ErrCommitDocumentMismatch)
	assert.Equal(t, *a.RootCommitID, env.currentCommitID(t, a.ID))

	_, err = env.restore.Restore(ctx, "missing", *a.RootCommitID)
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)

	_, err = env.restore.Restore(ctx, a.ID, "missing")
	require.ErrorIs(t, err, domain.ErrCommitNotFound)
}

func TestCompare_AgainstBuffer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDocument(t, paragraphs("keep", "drop"))

	cmp, err := env.diff.Compare(ctx, &versioningSvc.CompareRequest{
		CommitID: *doc.RootCommitID,
		Content:  paragraphs("keep", "new"),
	})
	require.NoError(t, err)
	require.Len(t, cmp.Additions, 1)
	require.Len(t, cmp.Deletions, 1)
	assert.Equal(t, "new", cmp.Additions[0].Text)
	assert.Equal(t, "drop", cmp.Deletions[0].Text)
	assert.Nil(t, cmp.OtherCommitID)

	other := env.createDocument(t, nil)
	foreign := *other.RootCommitID
	_, err = env.diff.Compare(ctx, &versioningSvc.CompareRequest{CommitID: *doc.RootCommitID, OtherCommitID: &foreign})
	require.ErrorIs(t, err, domain.ErrCommitDocumentMismatch)

	_, err = env.diff.Compare(ctx, &versioningSvc.CompareRequest{CommitID: *doc.RootCommitID, Content: json.RawMessage(`{`)})
	require.ErrorIs(t, err, domain.ErrMalformedContent)
}
