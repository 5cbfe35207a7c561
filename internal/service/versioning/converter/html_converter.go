// Package converter turns external markup into editor document JSON.
package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	models "quill/internal/domain/models/versioning"
	versioningSvc "quill/internal/domain/services/versioning"
	"quill/internal/service/versioning/converter/sanitizer"

	"github.com/PuerkitoBio/goquery"
)

// node is one TipTap/ProseMirror node
type node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []node         `json:"content,omitempty"`
	Marks   []mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

type mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

var whitespace = regexp.MustCompile(`\s+`)

// htmlConverter converts HTML into TipTap JSON in two stages:
// 1. Sanitize HTML (bluemonday)
// 2. Walk the sanitized DOM and emit editor nodes (goquery)
type htmlConverter struct {
	sanitizer *sanitizer.HTMLSanitizer
}

// NewHTMLConverter creates a new HTML to TipTap JSON converter
func NewHTMLConverter() versioningSvc.ContentConverter {
	return &htmlConverter{sanitizer: sanitizer.NewHTMLSanitizer()}
}

// Convert transforms HTML into a { type: "doc", content: [...] } document.
// A document without blocks gets one empty paragraph.
func (c *htmlConverter) Convert(ctx context.Context, input string) (json.RawMessage, error) {
	sanitized := c.sanitizer.Sanitize(input)

	dom, err := goquery.NewDocumentFromReader(strings.NewReader(sanitized))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	blocks := convertBlocks(dom.Find("body"))
	if len(blocks) == 0 {
		blocks = []node{{Type: "paragraph"}}
	}

	out, err := json.Marshal(node{Type: models.DocNodeType, Content: blocks})
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out, nil
}

// convertBlocks maps the children of sel to block nodes. Loose inline content
// between blocks is gathered into paragraphs.
func convertBlocks(sel *goquery.Selection) []node {
	var blocks []node
	var pending []node

	flush := func() {
		if inline := trimInline(pending); len(inline) > 0 {
			blocks = append(blocks, node{Type: "paragraph", Content: inline})
		}
		pending = nil
	}

	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		name := goquery.NodeName(child)
		switch name {
		case "p":
			flush()
			blocks = append(blocks, node{Type: "paragraph", Content: trimInline(convertInline(child, nil))})
		case "h1", "h2", "h3", "h4", "h5", "h6":
			flush()
			level, _ := strconv.Atoi(name[1:])
			blocks = append(blocks, node{
				Type:    "heading",
				Attrs:   map[string]any{"level": level},
				Content: trimInline(convertInline(child, nil)),
			})
		case "ul":
			flush()
			blocks = append(blocks, node{Type: "bulletList", Content: convertListItems(child)})
		case "ol":
			flush()
			list := node{Type: "orderedList", Content: convertListItems(child)}
			start := 1
			if s, ok := child.Attr("start"); ok {
				if n, err := strconv.Atoi(s); err == nil {
					start = n
				}
			}
			list.Attrs = map[string]any{"start": start}
			blocks = append(blocks, list)
		case "blockquote":
			flush()
			blocks = append(blocks, node{Type: "blockquote", Content: convertBlocks(child)})
		case "pre":
			flush()
			code := node{Type: "codeBlock"}
			if text := child.Text(); text != "" {
				code.Content = []node{{Type: "text", Text: text}}
			}
			blocks = append(blocks, code)
		case "hr":
			flush()
			blocks = append(blocks, node{Type: "horizontalRule"})
		case "div", "section", "article", "header", "footer", "main":
			flush()
			blocks = append(blocks, convertBlocks(child)...)
		default:
			pending = append(pending, convertInline(child, nil)...)
		}
	})
	flush()

	return blocks
}

// convertListItems maps li children; list item content is always block level
func convertListItems(list *goquery.Selection) []node {
	var items []node
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		content := convertBlocks(li)
		if len(content) == 0 {
			content = []node{{Type: "paragraph"}}
		}
		items = append(items, node{Type: "listItem", Content: content})
	})
	return items
}

// convertInline maps every node in sel (and below) to text and hardBreak
// nodes carrying the marks of their ancestors
func convertInline(sel *goquery.Selection, marks []mark) []node {
	var out []node
	sel.Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch name {
		case "#text":
			if text := whitespace.ReplaceAllString(s.Text(), " "); text != "" {
				out = append(out, node{Type: "text", Text: text, Marks: marks})
			}
			return
		case "br":
			out = append(out, node{Type: "hardBreak"})
			return
		}

		childMarks := marks
		switch name {
		case "strong", "b":
			childMarks = withMark(marks, mark{Type: "bold"})
		case "em", "i":
			childMarks = withMark(marks, mark{Type: "italic"})
		case "u":
			childMarks = withMark(marks, mark{Type: "underline"})
		case "s", "strike", "del":
			childMarks = withMark(marks, mark{Type: "strike"})
		case "code":
			childMarks = withMark(marks, mark{Type: "code"})
		case "a":
			href, _ := s.Attr("href")
			childMarks = withMark(marks, mark{Type: "link", Attrs: map[string]any{"href": href}})
		}
		out = append(out, convertInline(s.Contents(), childMarks)...)
	})
	return out
}

func withMark(marks []mark, m mark) []mark {
	return append(slices.Clip(marks), m)
}

// trimInline drops the outer whitespace of a run of inline nodes
func trimInline(inline []node) []node {
	for len(inline) > 0 && inline[0].Type == "text" {
		inline[0].Text = strings.TrimLeft(inline[0].Text, " ")
		if inline[0].Text != "" {
			break
		}
		inline = inline[1:]
	}
	for len(inline) > 0 && inline[len(inline)-1].Type == "text" {
		last := len(inline) - 1
		inline[last].Text = strings.TrimRight(inline[last].Text, " ")
		if inline[last].Text != "" {
			break
		}
		inline = inline[:last]
	}
	if len(inline) == 0 {
		return nil
	}
	return inline
}
