package analyzer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pycheck/internal/config"
)

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writePy(t, dir, "setup.py", "x = 1\n")
	writePy(t, dir, "pkg/__init__.py", "")
	writePy(t, dir, "pkg/models.py", "x = 1\n")
	writePy(t, dir, "pkg/stubs.pyi", "x: int\n")
	writePy(t, dir, "pkg/__pycache__/models.py", "x = 1\n")
	writePy(t, dir, ".venv/lib/site.py", "x = 1\n")
	writePy(t, dir, "README.md", "# readme\n")

	files, err := CollectFiles(config.DefaultConfig(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pkg/__init__.py",
		"pkg/models.py",
		"pkg/stubs.pyi",
		"setup.py",
	}, relAll(t, dir, files))
}

func TestCollectFilesCustomExclude(t *testing.T) {
	dir := t.TempDir()
	writePy(t, dir, "app/main.py", "x = 1\n")
	writePy(t, dir, "app/migrations/0001_initial.py", "x = 1\n")
	writePy(t, dir, "tests/test_main.py", "x = 1\n")

	cfg := config.DefaultConfig()
	cfg.Files.Exclude = append(cfg.Files.Exclude, "**/migrations/**", "tests/**")

	files, err := CollectFiles(cfg, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/main.py"}, relAll(t, dir, files))
}

func TestCollectFilesExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	py := writePy(t, dir, "script.py", "x = 1\n")
	txt := writePy(t, dir, "notes.txt", "hello\n")

	files, err := CollectFiles(config.DefaultConfig(), []string{py, txt, py})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Clean(py)}, files)
}

func TestCollectFilesSkipsLargeFiles(t *testing.T) {
	dir := t.TempDir()
	writePy(t, dir, "small.py", "x = 1\n")
	writePy(t, dir, "large.py", strings.Repeat("x = 1\n", 400))

	cfg := config.DefaultConfig()
	cfg.Files.MaxFileSize = 1
	files, err := CollectFiles(cfg, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.py"}, relAll(t, dir, files))
}

func TestCollectFilesMissingPath(t *testing.T) {
	_, err := CollectFiles(config.DefaultConfig(), []string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCollectFilesInvalidPattern(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Files.Include = []string{"[unclosed"}
	_, err := CollectFiles(cfg, []string{t.TempDir()})
	assert.Error(t, err)
}
