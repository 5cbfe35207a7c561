package config

const (
	// MaxDocumentTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxDocumentTitleLength = 255

	// MaxCommitNameLength is the maximum length for commit names.
	// Generated names are "<title> | commit: <timestamp>", so this must
	// exceed MaxDocumentTitleLength.
	MaxCommitNameLength = 400

	// DefaultDocumentTitle is used when a document is created without a title
	DefaultDocumentTitle = "Untitled Document"

	// DefaultCommitPageSize is the history page size when none is specified
	DefaultCommitPageSize = 20

	// MaxCommitPageSize is the largest history page a client may request
	MaxCommitPageSize = 100

	// MaxCommitPathDepth bounds ancestry walks. A chain longer than this is
	// truncated at the oldest end.
	MaxCommitPathDepth = 10000

	// MaxBlocksPerDocument bounds how many top-level blocks one snapshot may hold.
	MaxBlocksPerDocument = 20000

	// MaxDiffLeaves bounds the text leaves on each side of a diff. The LCS
	// table is (m+1)*(n+1) ints, about 200MB at this limit.
	MaxDiffLeaves = 5000
)
