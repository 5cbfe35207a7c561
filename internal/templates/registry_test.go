package templates

import (
	"testing"

	"quill/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_LoadsEmbeddedCatalogue(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 7)
	assert.Equal(t, "blank", list[0].ID)

	for _, id := range []string{"blank", "software-proposal", "project-proposal", "business-letter", "resume", "cover-letter", "letter"} {
		tmpl, err := r.Get(id)
		require.NoError(t, err, id)
		assert.NotEmpty(t, tmpl.Label, id)
		assert.NotEmpty(t, tmpl.InitialContent, id)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Get("nope")
	require.ErrorIs(t, err, domain.ErrTemplateNotFound)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParseRegistry_RejectsBadCatalogues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "templates:\n  - label: x\n"},
		{"duplicate id", "templates:\n  - id: a\n  - id: a\n"},
		{"invalid yaml", "templates: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRegistry([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
