// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"pycheck/internal/analyzer/detectors"
	"pycheck/internal/models"
)

// PyprojectFile is checked for a [tool.pycheck] table when no YAML config exists.
const PyprojectFile = "pyproject.toml"

// Config represents the configuration for pycheck
type Config struct {
	Version string `yaml:"version" json:"version" toml:"version"`

	Analysis AnalysisConfig `yaml:"analysis" json:"analysis" toml:"analysis"`

	Output OutputConfig `yaml:"output" json:"output" toml:"output"`

	Rules RulesConfig `yaml:"rules" json:"rules" toml:"rules"`

	Files FilesConfig `yaml:"files" json:"files" toml:"files"`

	Fix FixConfig `yaml:"fix" json:"fix" toml:"fix"`
}

type AnalysisConfig struct {
	// Parallel analysis
	MaxWorkers int `yaml:"max_workers" json:"max_workers" toml:"max_workers"`

	// Lowest severity that makes the run fail: none, info, warning or error
	FailOn string `yaml:"fail_on" json:"fail_on" toml:"fail_on"`
}

type OutputConfig struct {
	// console, json or sarif
	Format string `yaml:"format" json:"format" toml:"format"`

	Colors bool `yaml:"colors" json:"colors" toml:"colors"`

	Verbose bool `yaml:"verbose" json:"verbose" toml:"verbose"`

	// Print the suggested fix under each issue
	ShowFixes bool `yaml:"show_fixes" json:"show_fixes" toml:"show_fixes"`

	OutputFile string `yaml:"output_file,omitempty" json:"output_file,omitempty" toml:"output_file,omitempty"`
}

type RulesConfig struct {
	// Rule selectors: full codes, code prefixes, rule names or ALL
	Select []string `yaml:"select" json:"select" toml:"select"`
	Ignore []string `yaml:"ignore" json:"ignore" toml:"ignore"`

	DictIterMissingItems RuleConfig `yaml:"dict_iter_missing_items" json:"dict_iter_missing_items" toml:"dict_iter_missing_items"`
}

type RuleConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled" toml:"enabled"`
	Severity string `yaml:"severity" json:"severity" toml:"severity"`
}

type FilesConfig struct {
	// Include patterns, matched against slash-separated paths relative to each root
	Include []string `yaml:"include" json:"include" toml:"include"`

	// Exclude patterns
	Exclude []string `yaml:"exclude" json:"exclude" toml:"exclude"`

	FollowSymlinks bool `yaml:"follow_symlinks" json:"follow_symlinks" toml:"follow_symlinks"`

	// Max file size (in KB), 0 disables the limit
	MaxFileSize int `yaml:"max_file_size" json:"max_file_size" toml:"max_file_size"`
}

type FixConfig struct {
	Enabled     bool `yaml:"enabled" json:"enabled" toml:"enabled"`
	UnsafeFixes bool `yaml:"unsafe_fixes" json:"unsafe_fixes" toml:"unsafe_fixes"`
}

func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			MaxWorkers: 4,
			FailOn:     "warning",
		},
		Output: OutputConfig{
			Format:    "console",
			Colors:    true,
			Verbose:   false,
			ShowFixes: true,
		},
		Rules: RulesConfig{
			Select: []string{"ALL"},
			Ignore: []string{},
			DictIterMissingItems: RuleConfig{
				Enabled:  true,
				Severity: "error",
			},
		},
		Files: FilesConfig{
			Include:        []string{"**/*.py", "**/*.pyi"},
			Exclude:        []string{".git/**", "**/__pycache__/**", ".venv/**", "venv/**", "node_modules/**"},
			FollowSymlinks: false,
			MaxFileSize:    1024, // 1MB
		},
		Fix: FixConfig{
			Enabled:     false,
			UnsafeFixes: false,
		},
	}
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()

	if filepath.Ext(configPath) == ".toml" {
		if _, err := decodePyproject(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// decodePyproject fills config from the [tool.pycheck] table of a
// pyproject.toml and reports whether the table was present.
func decodePyproject(data []byte, config *Config) (bool, error) {
	doc := struct {
		Tool struct {
			Pycheck *Config `toml:"pycheck"`
		} `toml:"tool"`
	}{}
	doc.Tool.Pycheck = config

	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return false, err
	}
	return meta.IsDefined("tool", "pycheck"), nil
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	possiblePaths := []string{
		".pycheck.yml",
		".pycheck.yaml",
		"pycheck.yml",
		"pycheck.yaml",
		".config/pycheck.yml",
		".config/pycheck.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if data, err := os.ReadFile(PyprojectFile); err == nil {
		if ok, err := decodePyproject(data, DefaultConfig()); err == nil && ok {
			return PyprojectFile
		}
	}

	return ""
}

var (
	validFormats = []string{"console", "json", "sarif"}
	validFailOn  = []string{"none", "info", "warning", "error"}
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(validFormats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, validFormats))
	}

	if c.Analysis.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("max_workers must be at least 1"))
	}

	if !slices.Contains(validFailOn, strings.ToLower(c.Analysis.FailOn)) {
		errs = append(errs, fmt.Errorf("invalid fail_on: %s (valid: %v)", c.Analysis.FailOn, validFailOn))
	}

	for _, sel := range append(slices.Clone(c.Rules.Select), c.Rules.Ignore...) {
		if err := detectors.ValidateSelector(sel); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := models.ParseSeverity(c.Rules.DictIterMissingItems.Severity); err != nil {
		errs = append(errs, fmt.Errorf("rules.dict_iter_missing_items: %w", err))
	}

	if c.Files.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("max_file_size must not be negative"))
	}
	if _, err := CompileGlobs(c.Files.Include); err != nil {
		errs = append(errs, err)
	}
	if _, err := CompileGlobs(c.Files.Exclude); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateConfig creates a sample configuration file
func GenerateConfig(configPath string) error {
	config := DefaultConfig()
	return config.SaveConfig(configPath)
}

// IsRuleEnabled checks if a rule is selected, not ignored and not switched off
// in its own section.
func (c *Config) IsRuleEnabled(rule detectors.Rule) bool {
	if rule.Code == models.RuleDictIterMissingItems && !c.Rules.DictIterMissingItems.Enabled {
		return false
	}
	selected := slices.ContainsFunc(c.Rules.Select, rule.MatchesSelector)
	ignored := slices.ContainsFunc(c.Rules.Ignore, rule.MatchesSelector)
	return selected && !ignored
}

// RuleSeverity returns the configured severity for a rule, falling back to
// the rule's default.
func (c *Config) RuleSeverity(rule detectors.Rule) models.Severity {
	if rule.Code == models.RuleDictIterMissingItems {
		if sev, err := models.ParseSeverity(c.Rules.DictIterMissingItems.Severity); err == nil {
			return sev
		}
	}
	return rule.Severity
}

// FailThreshold returns the lowest severity that fails the run. ok is false
// for fail_on: none.
func (c *Config) FailThreshold() (sev models.Severity, ok bool) {
	if strings.EqualFold(c.Analysis.FailOn, "none") {
		return 0, false
	}
	sev, err := models.ParseSeverity(c.Analysis.FailOn)
	if err != nil {
		return models.SeverityWarning, true
	}
	return sev, true
}

// CompileGlobs compiles slash-separated path patterns. A leading "**/" also
// matches at the root, so "**/*.py" matches "setup.py".
func CompileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		variants := []string{p}
		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			variants = append(variants, rest)
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid file pattern %q: %w", p, err)
			}
			globs = append(globs, g)
		}
	}
	return globs, nil
}
