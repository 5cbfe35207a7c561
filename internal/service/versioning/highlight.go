package versioning

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"quill/internal/config"
	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func highlightMark(color string) string {
	return `{"type":"highlight","attrs":{"color":"` + color + `"}}`
}

// Highlight diffs the text leaves of base and other and returns copies of
// both documents with added leaves of other and removed leaves of base
// marked. The inputs are not modified.
func Highlight(base, other json.RawMessage) (*models.Comparison, error) {
	baseLeaves, err := ExtractTextLeaves(base)
	if err != nil {
		return nil, err
	}
	otherLeaves, err := ExtractTextLeaves(other)
	if err != nil {
		return nil, err
	}
	if len(baseLeaves) > config.MaxDiffLeaves || len(otherLeaves) > config.MaxDiffLeaves {
		return nil, &domain.ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("documents with more than %d text leaves cannot be compared", config.MaxDiffLeaves),
		}
	}

	result := Diff(leafTexts(baseLeaves), leafTexts(otherLeaves))

	added, err := annotate(other, otherLeaves, result.Additions, models.AddedHighlightColor)
	if err != nil {
		return nil, err
	}
	removed, err := annotate(base, baseLeaves, result.Deletions, models.RemovedHighlightColor)
	if err != nil {
		return nil, err
	}

	cmp := &models.Comparison{
		Added:     added,
		Removed:   removed,
		Additions: make([]models.TextLeaf, 0, len(result.Additions)),
		Deletions: make([]models.TextLeaf, 0, len(result.Deletions)),
	}
	for _, i := range result.Additions {
		cmp.Additions = append(cmp.Additions, otherLeaves[i])
	}
	for _, i := range result.Deletions {
		cmp.Deletions = append(cmp.Deletions, baseLeaves[i])
	}
	return cmp, nil
}

// annotate appends a highlight mark to the node at each selected leaf's path
func annotate(doc json.RawMessage, leaves []models.TextLeaf, indices []int, color string) (json.RawMessage, error) {
	out := slices.Clone([]byte(doc))
	mark := highlightMark(color)

	for _, i := range indices {
		path := leaves[i].Path + ".marks"

		marks := []string{}
		if existing := gjson.GetBytes(out, path); existing.IsArray() {
			existing.ForEach(func(_, m gjson.Result) bool {
				marks = append(marks, m.Raw)
				return true
			})
		}
		marks = append(marks, mark)

		var err error
		out, err = sjson.SetRawBytes(out, path, []byte("["+strings.Join(marks, ",")+"]"))
		if err != nil {
			return nil, fmt.Errorf("annotate %s: %w", leaves[i].Path, err)
		}
	}

	return out, nil
}
