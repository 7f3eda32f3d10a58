package fix

import (
	"errors"
	"fmt"
	"sort"

	"pycheck/internal/models"
)

var ErrOverlappingEdits = errors.New("overlapping edits")

// ApplyToSource returns content with edits applied. Edits refer to offsets in
// the original content and must not overlap. content is not modified.
func ApplyToSource(content []byte, edits []models.Edit) ([]byte, error) {
	sorted := append([]models.Edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start == sorted[j].Span.Start {
			return sorted[i].Span.End > sorted[j].Span.End
		}
		return sorted[i].Span.Start > sorted[j].Span.Start
	})

	for i, e := range sorted {
		if e.Span.Start > e.Span.End || int(e.Span.End) > len(content) {
			return nil, fmt.Errorf("edit %s out of range for %d bytes", e.Span, len(content))
		}
		if i > 0 && spansConflict(sorted[i-1], e) {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingEdits, e.Span, sorted[i-1].Span)
		}
	}

	out := append([]byte(nil), content...)
	for _, e := range sorted {
		tail := append([]byte(nil), out[e.Span.End:]...)
		out = append(append(out[:e.Span.Start], e.NewText...), tail...)
	}
	return out, nil
}
