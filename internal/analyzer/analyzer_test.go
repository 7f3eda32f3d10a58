package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pycheck/internal/config"
	"pycheck/internal/models"
)

const citiesSource = `data = {"Paris": 1, "Tokyo": 2}
for city, population in data:
    print(city, population)
`

func writePy(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeSource(t *testing.T) {
	issues, err := NewAnalyzer(nil).AnalyzeSource("cities.py", []byte(citiesSource))
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, models.RuleDictIterMissingItems, issue.Rule)
	assert.Equal(t, "dict-iter-missing-items", issue.Name)
	assert.Equal(t, models.SeverityError, issue.Severity)
	assert.Equal(t, "cities.py", issue.File)
	assert.Equal(t, 2, issue.Line)
	assert.Equal(t, 25, issue.Column)
	assert.Equal(t, 2, issue.EndLine)
	assert.Equal(t, 29, issue.EndColumn)
	assert.Equal(t, "for city, population in data:", issue.CodeSnippet)
	assert.Equal(t, "Add a call to `.items()`", issue.FixTitle)

	require.True(t, issue.Fixable())
	edit := issue.Fix.Edits[0]
	assert.Equal(t, "data.items()", edit.NewText)
	require.NotNil(t, edit.Region)
	assert.Equal(t, models.Region{Line: 2, Column: 25, EndLine: 2, EndColumn: 29}, *edit.Region)
}

func TestAnalyzeSourceNoqa(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    int
	}{
		{"bare", "  # noqa", 0},
		{"matching code", "  # noqa: PLE1141", 0},
		{"lowercase code", "  # NOQA:ple1141", 0},
		{"code list", "  # noqa: E501, PLE1141", 0},
		{"other code", "  # noqa: E501", 1},
		{"unrelated comment", "  # todo", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := "data = {\"a\": 1}\nfor k, v in data:" + tt.comment + "\n    pass\n"
			issues, err := NewAnalyzer(nil).AnalyzeSource("noqa.py", []byte(code))
			require.NoError(t, err)
			assert.Len(t, issues, tt.want)
		})
	}
}

func TestAnalyzeSourceSyntaxErrorStillAnalyzed(t *testing.T) {
	code := citiesSource + "def broken(:\n"
	issues, err := NewAnalyzer(nil).AnalyzeSource("broken.py", []byte(code))
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestAnalyzerRespectsRuleSelection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.Ignore = []string{"PLE1141"}

	a := NewAnalyzer(cfg)
	assert.Zero(t, a.GetDetectorCount())

	issues, err := a.AnalyzeSource("cities.py", []byte(citiesSource))
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestAnalyzerConfiguredSeverity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.DictIterMissingItems.Severity = "warning"

	issues, err := NewAnalyzer(cfg).AnalyzeSource("cities.py", []byte(citiesSource))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, models.SeverityWarning, issues[0].Severity)
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	clean := writePy(t, dir, "clean.py", "for k, v in {}.items():\n    pass\n")
	first := writePy(t, dir, "b.py", citiesSource)
	second := writePy(t, dir, "a.py", citiesSource+"def f(m: dict):\n    for k, v in m:\n        pass\n")
	missing := filepath.Join(dir, "missing.py")

	cfg := config.DefaultConfig()
	cfg.Analysis.MaxWorkers = 2
	result, err := NewAnalyzer(cfg).AnalyzeFiles(context.Background(), []string{clean, first, second, missing})
	require.NoError(t, err)

	assert.Equal(t, []string{clean, first, second}, result.Files)
	assert.Equal(t, 3, result.TotalIssues)
	assert.Equal(t, 3, result.IssuesByRule["PLE1141"])
	assert.Equal(t, 3, result.IssuesBySeverity["ERROR"])
	assert.Equal(t, 3, result.Fixable())

	// sorted by file then line
	assert.Equal(t, second, result.Issues[0].File)
	assert.Equal(t, 2, result.Issues[0].Line)
	assert.Equal(t, 5, result.Issues[1].Line)
	assert.Equal(t, first, result.Issues[2].File)
}

func TestAnalyzeFilesSkipsLargeFiles(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, 0, 2048)
	for len(big) < 2048 {
		big = append(big, []byte("x = 1\n")...)
	}
	path := writePy(t, dir, "big.py", citiesSource+string(big))

	cfg := config.DefaultConfig()
	cfg.Files.MaxFileSize = 1
	result, err := NewAnalyzer(cfg).AnalyzeFiles(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Zero(t, result.TotalIssues)
}

func TestAnalyzeFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writePy(t, dir, "a.py", citiesSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAnalyzer(nil).AnalyzeFiles(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetDetectorNames(t *testing.T) {
	names := NewAnalyzer(nil).GetDetectorNames()
	assert.Equal(t, []string{"dict-iter-missing-items (PLE1141)"}, names)
}
