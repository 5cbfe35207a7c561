package converter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestHTMLConverter_Convert(t *testing.T) {
	c := NewHTMLConverter()

	tests := []struct {
		name   string
		html   string
		checks map[string]string // gjson path -> expected raw or string value
	}{
		{
			name: "empty paragraph",
			html: "<p></p>",
			checks: map[string]string{
				"type":           "doc",
				"content.#":      "1",
				"content.0.type": "paragraph",
			},
		},
		{
			name: "heading with level",
			html: "<h2>Timeline</h2>",
			checks: map[string]string{
				"content.0.type":           "heading",
				"content.0.attrs.level":    "2",
				"content.0.content.0.text": "Timeline",
			},
		},
		{
			name: "bold label followed by text",
			html: "<p><strong>Client:</strong> [Client Name]</p>",
			checks: map[string]string{
				"content.0.content.#":              "2",
				"content.0.content.0.text":         "Client:",
				"content.0.content.0.marks.0.type": "bold",
				"content.0.content.1.text":         " [Client Name]",
				"content.0.content.1.marks":        "",
			},
		},
		{
			name: "bullet list items wrap paragraphs",
			html: "<ul><li>One</li><li>Two</li></ul>",
			checks: map[string]string{
				"content.0.type":                              "bulletList",
				"content.0.content.#":                         "2",
				"content.0.content.1.type":                    "listItem",
				"content.0.content.1.content.0.type":          "paragraph",
				"content.0.content.1.content.0.content.0.text": "Two",
			},
		},
		{
			name: "hard break",
			html: "<p>Sincerely,<br/>[Your Name]</p>",
			checks: map[string]string{
				"content.0.content.#":      "3",
				"content.0.content.1.type": "hardBreak",
				"content.0.content.2.text": "[Your Name]",
			},
		},
		{
			name: "scripts are stripped",
			html: "<p>safe</p><script>alert(1)</script>",
			checks: map[string]string{
				"content.#":                "1",
				"content.0.content.0.text": "safe",
			},
		},
		{
			name: "loose text becomes a paragraph",
			html: "hello <em>world</em>",
			checks: map[string]string{
				"content.0.type":                   "paragraph",
				"content.0.content.0.text":         "hello ",
				"content.0.content.1.marks.0.type": "italic",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Convert(context.Background(), tt.html)
			require.NoError(t, err)
			require.True(t, gjson.ValidBytes(out))

			for path, want := range tt.checks {
				assert.Equal(t, want, gjson.GetBytes(out, path).String(), "path %s in %s", path, out)
			}
		})
	}
}
