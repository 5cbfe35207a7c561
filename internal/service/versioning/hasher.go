// Package versioning implements the content-addressed history of documents:
// block decomposition, blob dedup, snapshot trees, the commit chain, diffs
// and restores.
package versioning

import (
	"crypto/sha256"
	"encoding/hex"

	versioningSvc "quill/internal/domain/services/versioning"
)

// BlockEncodingVersion identifies the canonical block serialization that blob
// hashes are computed over. Any change to canonicalize must bump it, since
// old and new encodings of the same block would no longer dedup.
const BlockEncodingVersion = 2

type sha256Hasher struct{}

// NewHasher returns the SHA-256 hasher used for blob addressing
func NewHasher() versioningSvc.Hasher {
	return sha256Hasher{}
}

// Digest returns the 64-character lowercase hex SHA-256 of serialized
func (sha256Hasher) Digest(serialized string) string {
	sum := sha256.Sum256([]byte(serialized))
	return hex.EncodeToString(sum[:])
}
