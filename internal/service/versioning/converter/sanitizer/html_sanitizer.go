package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer strips markup the editor cannot represent or should never
// execute before it is converted to document JSON.
//
// Thread-safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer based on the UGC policy: formatting,
// headings, lists, links and code survive; scripts, event handlers and
// javascript: URLs do not.
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()

	policy.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")

	return &HTMLSanitizer{policy: policy}
}

// Sanitize returns html with every disallowed element and attribute removed
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
