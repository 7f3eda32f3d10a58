package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"pycheck/internal/analyzer"
	"pycheck/internal/config"
	"pycheck/internal/fix"
	"pycheck/internal/models"
	"pycheck/internal/watcher"
)

// errIssuesFound makes the process exit with status 1 without printing.
var errIssuesFound = errors.New("issues found")

var (
	formatFlag         string
	watchFlag          bool
	configFlag         string
	generateConfigFlag bool
	fixFlag            bool
	unsafeFixesFlag    bool
	diffFlag           bool
	selectFlag         []string
	ignoreFlag         []string
	verboseFlag        bool
	outputFlag         string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pycheck [files or directories]",
	Short: "A Python linter that finds dictionaries unpacked without .items()",
	Long: `pycheck is a static analysis tool for Python code. It reports for loops
that unpack a dictionary into two names without calling .items() (PLE1141)
and can rewrite them automatically.

Examples:
  pycheck .                           # Analyze current directory
  pycheck app.py utils.py             # Analyze specific files
  pycheck --fix .                     # Apply safe fixes in place
  pycheck --diff .                    # Show the fixes as a unified diff
  pycheck --format=sarif -o out.sarif # Write a SARIF report
  pycheck --config=.pycheck.yml .     # Use custom config
  pycheck --generate-config           # Generate sample config file
  pycheck rule PLE1141                # Explain a rule`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAnalysis,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errIssuesFound) {
			color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&formatFlag, "format", "f", "", "Output format (console, json, sarif)")
	flags.BoolVarP(&watchFlag, "watch", "w", false, "Watch mode for development")
	flags.StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	flags.BoolVar(&generateConfigFlag, "generate-config", false, "Generate sample configuration file")
	flags.BoolVar(&fixFlag, "fix", false, "Apply fixes in place")
	flags.BoolVar(&unsafeFixesFlag, "unsafe-fixes", false, "Also apply fixes marked unsafe")
	flags.BoolVar(&diffFlag, "diff", false, "Print fixes as a unified diff instead of applying them")
	flags.StringSliceVar(&selectFlag, "select", nil, "Rule codes, prefixes or names to enable")
	flags.StringSliceVar(&ignoreFlag, "ignore", nil, "Rule codes, prefixes or names to disable")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output and debug logging")
	flags.StringVarP(&outputFlag, "output", "o", "", "Write the report to a file")

	rootCmd.AddCommand(ruleCmd)
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	if generateConfigFlag {
		return generateConfig()
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogging(os.Stderr, cfg.Output.Verbose)

	if len(args) == 0 {
		args = []string{"."}
	}

	files, err := analyzer.CollectFiles(cfg, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if watchFlag {
		return runWatch(ctx, cfg, args, files)
	}

	if len(files) == 0 {
		status(cfg, color.FgYellow, "No Python files found to analyze\n")
		return nil
	}
	return runOnce(ctx, cfg, files)
}

// applyFlags overrides configuration with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = formatFlag
	}
	if flags.Changed("output") {
		cfg.Output.OutputFile = outputFlag
	}
	if flags.Changed("verbose") {
		cfg.Output.Verbose = verboseFlag
	}
	if flags.Changed("select") {
		cfg.Rules.Select = selectFlag
	}
	if flags.Changed("ignore") {
		cfg.Rules.Ignore = append(cfg.Rules.Ignore, ignoreFlag...)
	}
	if flags.Changed("fix") {
		cfg.Fix.Enabled = fixFlag
	}
	if flags.Changed("unsafe-fixes") {
		cfg.Fix.UnsafeFixes = unsafeFixesFlag
	}
}

func runOnce(ctx context.Context, cfg *config.Config, files []string) error {
	engine := analyzer.NewAnalyzer(cfg)

	if cfg.Output.Verbose {
		status(cfg, color.FgCyan, "Analyzing %d Python files with %d rules...\n", len(files), engine.GetDetectorCount())
		if configFlag != "" {
			status(cfg, color.FgCyan, "Using configuration: %s\n", configFlag)
		}
	}

	result, err := engine.AnalyzeFiles(ctx, files)
	if err != nil {
		return err
	}

	if diffFlag {
		return showDiff(result, cfg)
	}

	if cfg.Fix.Enabled {
		fixed, err := applyFixes(result, cfg)
		if err != nil {
			return err
		}
		if fixed > 0 {
			result, err = engine.AnalyzeFiles(ctx, files)
			if err != nil {
				return err
			}
			result.FixedIssues = fixed
		}
	}

	if err := writeReport(result, cfg); err != nil {
		return err
	}

	if sev, ok := cfg.FailThreshold(); ok && result.CountAtLeast(sev) > 0 {
		return errIssuesFound
	}
	return nil
}

func applyFixes(result *models.AnalysisResult, cfg *config.Config) (int, error) {
	res, err := fix.Apply(result.Issues, fix.Options{UnsafeFixes: cfg.Fix.UnsafeFixes})
	if err != nil && !errors.Is(err, fix.ErrNoFixes) {
		return 0, fmt.Errorf("applying fixes: %w", err)
	}
	for _, s := range res.Skipped {
		slog.Debug("fix skipped", "id", s.ID, "path", s.Path, "reason", s.Reason)
	}
	return len(res.Applied), nil
}

// showDiff prints the fixes that would be applied and exits non-zero when
// there is anything to change.
func showDiff(result *models.AnalysisResult, cfg *config.Config) error {
	res, err := fix.Apply(result.Issues, fix.Options{UnsafeFixes: cfg.Fix.UnsafeFixes, DryRun: true})
	if err != nil && !errors.Is(err, fix.ErrNoFixes) {
		return fmt.Errorf("computing fixes: %w", err)
	}

	for _, change := range res.FileChanges {
		text, err := unifiedDiff(change)
		if err != nil {
			return err
		}
		fmt.Print(text)
	}

	if len(res.Applied) == 0 {
		status(cfg, color.FgGreen, "No fixes available.\n")
		return nil
	}
	status(cfg, color.FgCyan, "Would fix %d errors.\n", len(res.Applied))
	return errIssuesFound
}

func unifiedDiff(change fix.FileChange) (string, error) {
	path := filepath.ToSlash(change.Path)
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(change.Original)),
		B:        difflib.SplitLines(string(change.Fixed)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
}

func writeReport(result *models.AnalysisResult, cfg *config.Config) error {
	root, _ := os.Getwd()
	report := analyzer.NewReportGeneratorWithConfig(cfg).WithRoot(root).Generate(result)

	if cfg.Output.OutputFile == "" {
		fmt.Print(report)
		return nil
	}
	if err := writeReportToFile(report, cfg.Output.OutputFile); err != nil {
		return fmt.Errorf("failed to write report to file: %w", err)
	}
	status(cfg, color.FgGreen, "Report saved to: %s\n", cfg.Output.OutputFile)
	return nil
}

func writeReportToFile(report, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, []byte(report), 0o644)
}

// status prints a user-facing line on stderr so stdout stays parseable for
// json and sarif output.
func status(cfg *config.Config, attr color.Attribute, format string, a ...interface{}) {
	c := color.New(attr)
	if !cfg.Output.Colors {
		c.DisableColor()
	}
	c.Fprintf(os.Stderr, format, a...)
}

func runWatch(ctx context.Context, cfg *config.Config, paths, files []string) error {
	fw, err := watcher.NewFileWatcher(cfg)
	if err != nil {
		return err
	}
	defer fw.Close()

	if len(files) > 0 {
		if err := runOnce(ctx, cfg, files); err != nil && !errors.Is(err, errIssuesFound) {
			return err
		}
	}

	handler := func(changed []string) error {
		existing := make([]string, 0, len(changed))
		for _, path := range changed {
			if _, err := os.Stat(path); err == nil {
				existing = append(existing, path)
			}
		}
		if len(existing) == 0 {
			return nil
		}
		status(cfg, color.FgCyan, "\n%d file(s) changed: %s\n", len(existing), strings.Join(existing, ", "))
		if err := runOnce(ctx, cfg, existing); err != nil && !errors.Is(err, errIssuesFound) {
			return err
		}
		return nil
	}

	if err := fw.Watch(paths, handler); err != nil {
		return err
	}
	status(cfg, color.FgCyan, "Watching %d directories for changes. Press Ctrl+C to stop.\n", len(fw.GetWatchedPaths()))

	<-ctx.Done()
	return nil
}

func generateConfig() error {
	configPath := ".pycheck.yml"
	if err := config.GenerateConfig(configPath); err != nil {
		return fmt.Errorf("failed to generate config file: %w", err)
	}
	color.Green("Generated sample configuration file: %s\n", configPath)
	color.Cyan("Edit this file to customize pycheck behavior\n")
	color.Cyan("Run 'pycheck --config=%s .' to use it\n", configPath)
	return nil
}
