package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pycheck/internal/analyzer/detectors"
	"pycheck/internal/models"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func dictRule(t *testing.T) detectors.Rule {
	t.Helper()
	rule, ok := detectors.Lookup(string(models.RuleDictIterMissingItems))
	require.True(t, ok)
	return rule
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsRuleEnabled(dictRule(t)))
	assert.Equal(t, models.SeverityError, cfg.RuleSeverity(dictRule(t)))
}

func TestLoadConfigWithoutFileReturnsDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(".pycheck.yml", []byte(`
analysis:
  max_workers: 2
  fail_on: error
output:
  format: sarif
rules:
  ignore: [PLE1141]
  dict_iter_missing_items:
    enabled: true
    severity: warning
`), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Analysis.MaxWorkers)
	assert.Equal(t, "sarif", cfg.Output.Format)
	assert.False(t, cfg.IsRuleEnabled(dictRule(t)))
	assert.Equal(t, models.SeverityWarning, cfg.RuleSeverity(dictRule(t)))

	sev, ok := cfg.FailThreshold()
	assert.True(t, ok)
	assert.Equal(t, models.SeverityError, sev)

	// untouched sections keep their defaults
	assert.Equal(t, DefaultConfig().Files, cfg.Files)
}

func TestLoadConfigPyproject(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(PyprojectFile, []byte(`
[project]
name = "demo"

[tool.pycheck.output]
format = "json"
show_fixes = false

[tool.pycheck.fix]
enabled = true
`), 0o644))

	assert.Equal(t, PyprojectFile, findConfigFile())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.False(t, cfg.Output.ShowFixes)
	assert.True(t, cfg.Fix.Enabled)
	assert.Equal(t, 4, cfg.Analysis.MaxWorkers)
}

func TestPyprojectWithoutToolTableIsIgnored(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(PyprojectFile, []byte("[project]\nname = \"demo\"\n"), 0o644))

	assert.Empty(t, findConfigFile())
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("output: [unclosed"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse")

	invalid := filepath.Join(dir, "invalid.yml")
	require.NoError(t, os.WriteFile(invalid, []byte("output:\n  format: html\n"), 0o644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "invalid output format")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"workers", func(c *Config) { c.Analysis.MaxWorkers = 0 }, "max_workers"},
		{"fail on", func(c *Config) { c.Analysis.FailOn = "sometimes" }, "fail_on"},
		{"selector", func(c *Config) { c.Rules.Select = []string{"X100"} }, "unknown rule selector"},
		{"severity", func(c *Config) { c.Rules.DictIterMissingItems.Severity = "fatal" }, "unknown severity"},
		{"glob", func(c *Config) { c.Files.Exclude = []string{"[unclosed"} }, "invalid file pattern"},
		{"file size", func(c *Config) { c.Files.MaxFileSize = -1 }, "max_file_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestIsRuleEnabled(t *testing.T) {
	rule := dictRule(t)

	cfg := DefaultConfig()
	cfg.Rules.Select = []string{"PLE"}
	assert.True(t, cfg.IsRuleEnabled(rule))

	cfg.Rules.Ignore = []string{"dict-iter-missing-items"}
	assert.False(t, cfg.IsRuleEnabled(rule))

	cfg = DefaultConfig()
	cfg.Rules.DictIterMissingItems.Enabled = false
	assert.False(t, cfg.IsRuleEnabled(rule))

	cfg = DefaultConfig()
	cfg.Rules.Select = nil
	assert.False(t, cfg.IsRuleEnabled(rule))
}

func TestFailThresholdNone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.FailOn = "none"
	_, ok := cfg.FailThreshold()
	assert.False(t, ok)
}

func TestGenerateConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".config", "pycheck.yml")
	require.NoError(t, GenerateConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestCompileGlobs(t *testing.T) {
	globs, err := CompileGlobs([]string{"**/*.py"})
	require.NoError(t, err)

	matches := func(path string) bool {
		for _, g := range globs {
			if g.Match(path) {
				return true
			}
		}
		return false
	}
	assert.True(t, matches("setup.py"))
	assert.True(t, matches("pkg/sub/mod.py"))
	assert.False(t, matches("pkg/readme.md"))
}
