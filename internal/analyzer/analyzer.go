package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pycheck/internal/analyzer/detectors"
	"pycheck/internal/config"
	"pycheck/internal/models"
	"pycheck/internal/parser"
	"pycheck/internal/semantic"
	"pycheck/internal/source"
)

type Detector = detectors.Detector

type Analyzer struct {
	config    *config.Config
	parser    *parser.Parser
	detectors []Detector
	severity  map[models.RuleCode]models.Severity
}

func NewAnalyzer(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	analyzer := &Analyzer{
		config:   cfg,
		parser:   parser.New(),
		severity: make(map[models.RuleCode]models.Severity),
	}

	for _, rule := range detectors.Rules() {
		if !cfg.IsRuleEnabled(rule) {
			continue
		}
		analyzer.detectors = append(analyzer.detectors, rule.New())
		analyzer.severity[rule.Code] = cfg.RuleSeverity(rule)
	}

	return analyzer
}

// AnalyzeFiles analyzes files concurrently. Files that cannot be read are
// logged and left out of the result.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, filenames []string) (*models.AnalysisResult, error) {
	startTime := time.Now()
	result := models.NewAnalysisResult()

	type fileResult struct {
		issues []models.Issue
		ok     bool
	}
	results := make([]fileResult, len(filenames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(a.config.Analysis.MaxWorkers, len(filenames))))

	for i, filename := range filenames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			issues, err := a.analyzeFile(filename)
			if err != nil {
				slog.Warn("failed to analyze file", "path", filename, "error", err)
				return nil
			}
			results[i] = fileResult{issues: issues, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	var all []models.Issue
	for i, r := range results {
		if !r.ok {
			continue
		}
		result.Files = append(result.Files, filenames[i])
		all = append(all, r.issues...)
	}
	SortIssues(all)
	for _, issue := range all {
		result.AddIssue(issue)
	}

	result.AnalysisDuration = time.Since(startTime).String()
	return result, nil
}

func (a *Analyzer) analyzeFile(filename string) ([]models.Issue, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if limit := int64(a.config.Files.MaxFileSize) * 1024; limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("file is %d bytes, larger than max_file_size", info.Size())
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeSource(filename, content)
}

// AnalyzeSource runs every enabled detector over content. Source with syntax
// errors is still analyzed; the error is only logged.
func (a *Analyzer) AnalyzeSource(filename string, content []byte) ([]models.Issue, error) {
	mod, err := a.parser.Parse(filename, content)
	if err != nil {
		if mod == nil || !errors.Is(err, parser.ErrSyntax) {
			return nil, err
		}
		slog.Warn("source contains syntax errors, analyzing partial tree", "path", filename)
	}

	model := semantic.Build(mod)
	lines := source.NewLineIndex(content)
	noqa := parseNoqa(lines)

	issues := make([]models.Issue, 0)
	for _, detector := range a.detectors {
		for _, diag := range detector.Detect(mod, model) {
			issue := a.toIssue(filename, lines, diag)
			if noqa.suppresses(issue.Line, issue.Rule) {
				slog.Debug("issue suppressed by noqa", "path", filename, "line", issue.Line, "rule", issue.Rule)
				continue
			}
			issues = append(issues, issue)
		}
	}
	SortIssues(issues)
	return issues, nil
}

func (a *Analyzer) toIssue(filename string, lines *source.LineIndex, diag models.Diagnostic) models.Issue {
	line, col := lines.Position(diag.Span.Start)
	endLine, endCol := lines.Position(diag.Span.End)
	issue := models.Issue{
		Rule:        diag.Rule,
		Name:        diag.Name,
		Severity:    a.severity[diag.Rule],
		File:        filename,
		Line:        line,
		Column:      col,
		EndLine:     endLine,
		EndColumn:   endCol,
		Message:     diag.Message,
		CodeSnippet: strings.TrimSpace(lines.Line(line)),
		Fix:         diag.Fix,
	}
	if diag.Fix != nil {
		fix := *diag.Fix
		fix.Edits = make([]models.Edit, len(diag.Fix.Edits))
		for i, edit := range diag.Fix.Edits {
			edit.Region = regionOf(lines, edit.Span)
			fix.Edits[i] = edit
		}
		issue.Fix = &fix
		issue.FixTitle = fix.Title
	}
	return issue
}

func regionOf(lines *source.LineIndex, span source.Span) *models.Region {
	line, col := lines.Position(span.Start)
	endLine, endCol := lines.Position(span.End)
	return &models.Region{Line: line, Column: col, EndLine: endLine, EndColumn: endCol}
}

// SortIssues orders issues by file, position and rule.
func SortIssues(issues []models.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Rule < b.Rule
	})
}

// GetDetectorCount returns the number of active detectors
func (a *Analyzer) GetDetectorCount() int {
	return len(a.detectors)
}

// GetDetectorNames returns the names of all active detectors
func (a *Analyzer) GetDetectorNames() []string {
	names := make([]string, len(a.detectors))
	for i, detector := range a.detectors {
		names[i] = fmt.Sprintf("%s (%s)", detector.Name(), detector.Code())
	}
	return names
}
