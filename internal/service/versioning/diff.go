package versioning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	versioningRepo "quill/internal/domain/repositories/versioning"
	versioningSvc "quill/internal/domain/services/versioning"
	"quill/internal/metrics"

	"github.com/tidwall/gjson"
)

const textNodeType = "text"

// ExtractTextLeaves walks doc depth-first in document order and returns every
// text node, tagged with its top-level block and its JSON path
func ExtractTextLeaves(doc json.RawMessage) ([]models.TextLeaf, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrMalformedContent)
	}

	leaves := []models.TextLeaf{}
	gjson.GetBytes(doc, "content").ForEach(func(key, block gjson.Result) bool {
		index := int(key.Int())
		leaves = collectTextLeaves(block, "content."+strconv.Itoa(index), index, leaves)
		return true
	})
	return leaves, nil
}

func collectTextLeaves(node gjson.Result, path string, blockIndex int, leaves []models.TextLeaf) []models.TextLeaf {
	if !node.IsObject() {
		return leaves
	}
	if node.Get("type").String() == textNodeType {
		return append(leaves, models.TextLeaf{
			Text:       node.Get("text").String(),
			BlockIndex: blockIndex,
			Path:       path,
		})
	}

	node.Get("content").ForEach(func(key, child gjson.Result) bool {
		leaves = collectTextLeaves(child, path+".content."+strconv.Itoa(int(key.Int())), blockIndex, leaves)
		return true
	})
	return leaves
}

// Diff aligns a and b with a longest-common-subsequence table and returns the
// indices of b absent from a (additions) and of a absent from b (deletions),
// both ascending.
//
// When both directions keep the LCS length, backtracking moves up, so the
// element of a is reported as deleted. Callers rely on this to get the same
// alignment for repeated or ambiguous input.
func Diff(a, b []string) models.DiffResult {
	m, n := len(a), len(b)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	result := models.DiffResult{Additions: []int{}, Deletions: []int{}}
	i, j := m, n
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			result.Deletions = append(result.Deletions, i-1)
			i--
		default:
			result.Additions = append(result.Additions, j-1)
			j--
		}
	}
	for ; i > 0; i-- {
		result.Deletions = append(result.Deletions, i-1)
	}
	for ; j > 0; j-- {
		result.Additions = append(result.Additions, j-1)
	}

	// Backtracking collects indices from the end
	slices.Reverse(result.Additions)
	slices.Reverse(result.Deletions)
	return result
}

func leafTexts(leaves []models.TextLeaf) []string {
	texts := make([]string, len(leaves))
	for i, leaf := range leaves {
		texts[i] = leaf.Text
	}
	return texts
}

// diffService implements the DiffService interface
type diffService struct {
	commitRepo versioningRepo.CommitRepository
	decomposer versioningSvc.BlockDecomposer
	snapshots  *snapshotReader
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewDiffService creates a new diff service
func NewDiffService(deps *Dependencies) versioningSvc.DiffService {
	return &diffService{
		commitRepo: deps.CommitRepo,
		decomposer: deps.Decomposer,
		snapshots:  &snapshotReader{trees: deps.Trees, blobs: deps.Blobs},
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Compare diffs the commit against another commit of the same document, or
// against the editor buffer when no other commit is given
func (s *diffService) Compare(ctx context.Context, req *versioningSvc.CompareRequest) (*models.Comparison, error) {
	base, err := s.commitRepo.GetByID(ctx, req.CommitID)
	if err != nil {
		return nil, err
	}
	baseDoc, err := s.snapshots.read(ctx, base)
	if err != nil {
		logIntegrity(s.logger, err, "commit_id", base.ID)
		return nil, err
	}

	var otherDoc json.RawMessage
	if req.OtherCommitID != nil {
		other, err := s.commitRepo.GetByID(ctx, *req.OtherCommitID)
		if err != nil {
			return nil, err
		}
		if other.DocumentID != base.DocumentID {
			return nil, fmt.Errorf("commit %s, document %s: %w", other.ID, base.DocumentID, domain.ErrCommitDocumentMismatch)
		}
		if otherDoc, err = s.snapshots.read(ctx, other); err != nil {
			logIntegrity(s.logger, err, "commit_id", other.ID)
			return nil, err
		}
	} else {
		blocks, err := s.decomposer.Decompose(req.Content)
		if err != nil {
			return nil, err
		}
		if otherDoc, err = encodeJSON(models.NewDocumentJSON(blocks)); err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
	}

	start := time.Now()
	cmp, err := Highlight(baseDoc, otherDoc)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDiff(time.Since(start), len(cmp.Additions)+len(cmp.Deletions))

	cmp.BaseCommitID = base.ID
	cmp.OtherCommitID = req.OtherCommitID

	s.logger.Debug("commit compared",
		"commit_id", base.ID,
		"additions", len(cmp.Additions),
		"deletions", len(cmp.Deletions),
	)
	return cmp, nil
}
