package analyzer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"pycheck/internal/config"
	"pycheck/internal/models"

	"github.com/fatih/color"
)

// ReportGenerator handles formatting and displaying analysis results
type ReportGenerator struct {
	format string
	config *config.Config
	// root makes file paths in SARIF output relative
	root string
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(format string) *ReportGenerator {
	return &ReportGenerator{
		format: format,
		config: config.DefaultConfig(),
	}
}

func NewReportGeneratorWithConfig(cfg *config.Config) *ReportGenerator {
	return &ReportGenerator{
		format: cfg.Output.Format,
		config: cfg,
	}
}

// WithRoot sets the directory SARIF artifact URIs are made relative to.
func (r *ReportGenerator) WithRoot(root string) *ReportGenerator {
	r.root = root
	return r
}

// Generate creates a formatted report from analysis results
func (r *ReportGenerator) Generate(result *models.AnalysisResult) string {
	switch r.format {
	case "json":
		return r.generateJSON(result)
	case "sarif":
		data, err := GenerateSARIF(r.root, result)
		if err != nil {
			return fmt.Sprintf("Error generating SARIF report: %v", err)
		}
		return string(data) + "\n"
	default:
		return r.generateConsole(result)
	}
}

// generateJSON creates a JSON report
func (r *ReportGenerator) generateJSON(result *models.AnalysisResult) string {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON report: %v", err)
	}
	return string(data) + "\n"
}

// generateConsole creates a colorized console report
func (r *ReportGenerator) generateConsole(result *models.AnalysisResult) string {
	var report strings.Builder

	useColors := true
	verbose := false
	showFixes := true
	if r.config != nil {
		useColors = r.config.Output.Colors
		verbose = r.config.Output.Verbose
		showFixes = r.config.Output.ShowFixes
	}
	if !useColors {
		restore := color.NoColor
		color.NoColor = true
		defer func() { color.NoColor = restore }()
	}

	for _, issue := range result.Issues {
		r.writeIssue(&report, issue, showFixes)
	}
	if len(result.Issues) > 0 {
		report.WriteString("\n")
	}

	if verbose && r.config != nil {
		r.writeConfigInfo(&report)
	}

	r.writeSummary(&report, result)

	if verbose {
		report.WriteString(color.WhiteString("Analysis completed in %s\n", result.AnalysisDuration))
	}

	return report.String()
}

// writeIssue prints one issue in the file:line:col: CODE message layout.
func (r *ReportGenerator) writeIssue(report *strings.Builder, issue models.Issue, showFixes bool) {
	severityColor := severityDisplay(issue.Severity)
	fmt.Fprintf(report, "%s:%d:%d: %s %s\n",
		color.New(color.Bold).Sprint(issue.File), issue.Line, issue.Column,
		severityColor(string(issue.Rule)), issue.Message)

	if !showFixes {
		return
	}
	if issue.CodeSnippet != "" {
		fmt.Fprintf(report, "   %s %s\n", color.BlueString("|"), issue.CodeSnippet)
	}
	if issue.Fixable() {
		marker := "help"
		if issue.Fix.Applicability != models.ApplicabilitySafe {
			marker = fmt.Sprintf("help (%s)", issue.Fix.Applicability)
		}
		fmt.Fprintf(report, "   %s: %s\n", color.GreenString(marker), issue.FixTitle)
	}
}

func severityDisplay(severity models.Severity) func(a ...interface{}) string {
	switch severity {
	case models.SeverityError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case models.SeverityWarning:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgBlue).SprintFunc()
	}
}

func (r *ReportGenerator) writeConfigInfo(report *strings.Builder) {
	report.WriteString(color.WhiteString("Configuration:\n"))
	fmt.Fprintf(report, "   Selected rules: %s\n", color.CyanString(strings.Join(r.config.Rules.Select, ", ")))
	if len(r.config.Rules.Ignore) > 0 {
		fmt.Fprintf(report, "   Ignored rules: %s\n", color.CyanString(strings.Join(r.config.Rules.Ignore, ", ")))
	}
	fmt.Fprintf(report, "   Fail on: %s\n", color.CyanString(r.config.Analysis.FailOn))
	report.WriteString("\n")
}

func (r *ReportGenerator) writeSummary(report *strings.Builder, result *models.AnalysisResult) {
	if result.TotalIssues == 0 {
		report.WriteString(color.GreenString("All checks passed! (%d files analyzed)\n", len(result.Files)))
		if result.FixedIssues > 0 {
			fmt.Fprintf(report, "Fixed %d issues.\n", result.FixedIssues)
		}
		return
	}

	noun := "errors"
	if result.TotalIssues == 1 {
		noun = "error"
	}
	fmt.Fprintf(report, "Found %s in %d files analyzed",
		color.RedString("%d %s", result.TotalIssues, noun), len(result.Files))
	if result.FixedIssues > 0 {
		fmt.Fprintf(report, " (%d fixed)", result.FixedIssues)
	}
	report.WriteString(".\n")

	rules := make([]string, 0, len(result.IssuesByRule))
	for rule := range result.IssuesByRule {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	for _, rule := range rules {
		fmt.Fprintf(report, "   %s: %d\n", rule, result.IssuesByRule[rule])
	}

	if fixable := result.Fixable(); fixable > 0 {
		fmt.Fprintf(report, "%s fixable with the `--fix` option.\n",
			color.CyanString("[*] %d", fixable))
	}
}
