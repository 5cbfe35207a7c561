package versioning

import (
	"bytes"
	"encoding/json"
	"fmt"

	"quill/internal/config"
	"quill/internal/domain"
	versioningSvc "quill/internal/domain/services/versioning"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// DefaultBlock is the single block of an empty document
var DefaultBlock = json.RawMessage(`{"type":"paragraph"}`)

// canonicalize re-encodes one block so that equal blocks serialize to equal
// bytes: object keys sorted recursively, string escapes normalized (no HTML
// escaping), insignificant whitespace removed. Number literals are kept as
// written. Encoding version: BlockEncodingVersion.
func canonicalize(raw []byte) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
	}

	out, err := encodeJSON(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
	}
	return out, nil
}

// encodeJSON marshals v compactly without HTML-escaping <, > and &, so
// documents read back from storage hash like the blocks they were built from
func encodeJSON(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Drops the encoder's trailing newline along with any other whitespace
	return pretty.Ugly(buf.Bytes()), nil
}

type blockDecomposer struct{}

// NewBlockDecomposer returns the top-level block decomposer
func NewBlockDecomposer() versioningSvc.BlockDecomposer {
	return blockDecomposer{}
}

// Decompose splits doc into canonical top-level blocks
func (blockDecomposer) Decompose(doc json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []json.RawMessage{DefaultBlock}, nil
	}

	if !gjson.ValidBytes(trimmed) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrMalformedContent)
	}

	root := gjson.ParseBytes(trimmed)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: document must be a JSON object", domain.ErrMalformedContent)
	}

	content := root.Get("content")
	if !content.Exists() || content.Type == gjson.Null {
		return []json.RawMessage{}, nil
	}
	if !content.IsArray() {
		return nil, fmt.Errorf("%w: content must be an array", domain.ErrMalformedContent)
	}

	blocks := []json.RawMessage{}
	var canonErr error
	content.ForEach(func(_, block gjson.Result) bool {
		canonical, err := canonicalize([]byte(block.Raw))
		if err != nil {
			canonErr = err
			return false
		}
		blocks = append(blocks, canonical)
		return len(blocks) <= config.MaxBlocksPerDocument
	})
	if canonErr != nil {
		return nil, canonErr
	}
	if len(blocks) > config.MaxBlocksPerDocument {
		return nil, &domain.ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("document exceeds %d blocks", config.MaxBlocksPerDocument),
		}
	}

	return blocks, nil
}
