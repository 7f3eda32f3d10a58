package fix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pycheck/internal/models"
	"pycheck/internal/source"
)

const loopSource = "data = {\"a\": 1}\nfor k, v in data:\n    pass\n"

// dataSpan is the span of `data` in the loop header of loopSource.
var dataSpan = source.NewSpan(28, 32)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return path
}

func itemsIssue(path string, span source.Span) models.Issue {
	return models.Issue{
		Rule:    models.RuleDictIterMissingItems,
		File:    path,
		Line:    2,
		Column:  13,
		Message: "Call `items()` when unpacking a dictionary for iteration",
		Fix:     models.SafeFix("Add a call to `.items()`", models.Replacement(span, "data.items()")),
	}
}

func TestApplyToSource(t *testing.T) {
	out, err := ApplyToSource([]byte(loopSource), []models.Edit{models.Replacement(dataSpan, "data.items()")})
	require.NoError(t, err)
	assert.Equal(t, "data = {\"a\": 1}\nfor k, v in data.items():\n    pass\n", string(out))
}

func TestApplyToSourceMultipleEdits(t *testing.T) {
	content := []byte("abcdef")
	out, err := ApplyToSource(content, []models.Edit{
		models.Replacement(source.NewSpan(0, 1), "X"),
		models.Replacement(source.NewSpan(3, 3), "--"),
		models.Replacement(source.NewSpan(4, 6), ""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Xbc--d", string(out))
	assert.Equal(t, "abcdef", string(content), "input must not be modified")
}

func TestApplyToSourceRejectsOverlap(t *testing.T) {
	_, err := ApplyToSource([]byte("abcdef"), []models.Edit{
		models.Replacement(source.NewSpan(0, 3), "X"),
		models.Replacement(source.NewSpan(2, 4), "Y"),
	})
	assert.ErrorIs(t, err, ErrOverlappingEdits)
}

func TestApplyToSourceRejectsOutOfRange(t *testing.T) {
	_, err := ApplyToSource([]byte("abc"), []models.Edit{models.Replacement(source.NewSpan(2, 9), "X")})
	assert.Error(t, err)
}

func TestApplyWritesFile(t *testing.T) {
	path := writeFile(t, loopSource)

	result, err := Apply([]models.Issue{itemsIssue(path, dataSpan)}, Options{})
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, models.RuleDictIterMissingItems, result.Applied[0].Rule)
	require.Len(t, result.FileChanges, 1)
	assert.Equal(t, 1, result.FileChanges[0].EditCount)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "for k, v in data.items():")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestApplyDryRunLeavesFile(t *testing.T) {
	path := writeFile(t, loopSource)

	result, err := Apply([]models.Issue{itemsIssue(path, dataSpan)}, Options{DryRun: true})
	require.NoError(t, err)
	require.Len(t, result.FileChanges, 1)
	assert.Contains(t, string(result.FileChanges[0].Fixed), "data.items()")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, loopSource, string(got))
}

func TestApplyNoFixes(t *testing.T) {
	issue := itemsIssue("missing.py", dataSpan)
	issue.Fix = nil

	_, err := Apply([]models.Issue{issue}, Options{})
	assert.ErrorIs(t, err, ErrNoFixes)
}

func TestApplySkipsUnsafeUnlessEnabled(t *testing.T) {
	path := writeFile(t, loopSource)
	issue := itemsIssue(path, dataSpan)
	issue.Fix.Applicability = models.ApplicabilityUnsafe

	result, err := Apply([]models.Issue{issue}, Options{DryRun: true})
	assert.ErrorIs(t, err, ErrNoFixes)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "applicability is unsafe", result.Skipped[0].Reason)

	result, err = Apply([]models.Issue{issue}, Options{DryRun: true, UnsafeFixes: true})
	require.NoError(t, err)
	assert.Len(t, result.Applied, 1)
}

func TestApplyNeverAppliesDisplayOnly(t *testing.T) {
	path := writeFile(t, loopSource)
	issue := itemsIssue(path, dataSpan)
	issue.Fix.Applicability = models.ApplicabilityDisplayOnly

	_, err := Apply([]models.Issue{issue}, Options{DryRun: true, UnsafeFixes: true})
	assert.ErrorIs(t, err, ErrNoFixes)
}

func TestApplySkipsConflictingFix(t *testing.T) {
	path := writeFile(t, loopSource)
	first := itemsIssue(path, dataSpan)
	second := itemsIssue(path, source.NewSpan(29, 31))
	second.Fix.Edits[0].NewText = "X"

	result, err := Apply([]models.Issue{first, second}, Options{DryRun: true})
	require.NoError(t, err)
	assert.Len(t, result.Applied, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "conflicts with previously applied edits", result.Skipped[0].Reason)
}

func TestApplySkipsUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.py")

	result, err := Apply([]models.Issue{itemsIssue(path, dataSpan)}, Options{})
	assert.ErrorIs(t, err, ErrNoFixes)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0].Reason, "read ")
}

func TestSpansConflict(t *testing.T) {
	edit := func(start, end uint32) models.Edit { return models.Replacement(source.NewSpan(start, end), "") }

	assert.True(t, spansConflict(edit(0, 4), edit(2, 6)))
	assert.False(t, spansConflict(edit(0, 2), edit(2, 4)))
	assert.False(t, spansConflict(edit(3, 3), edit(3, 3)))
	assert.True(t, spansConflict(edit(3, 3), edit(2, 5)))
	assert.False(t, spansConflict(edit(5, 5), edit(2, 5)))
}
