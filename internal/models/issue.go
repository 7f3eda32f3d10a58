package models

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity accepts the lower- or upper-case names produced by String.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RuleCode identifies a rule, e.g. "PLE1141".
type RuleCode string

const (
	RuleDictIterMissingItems RuleCode = "PLE1141"
)

type Issue struct {
	Rule        RuleCode `json:"rule"`
	Name        string   `json:"name"`
	Severity    Severity `json:"severity"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	EndLine     int      `json:"end_line"`
	EndColumn   int      `json:"end_column"`
	Message     string   `json:"message"`
	FixTitle    string   `json:"fix_title,omitempty"`
	CodeSnippet string   `json:"code_snippet,omitempty"`
	Fix         *Fix     `json:"fix,omitempty"`
}

// Fixable reports whether the issue carries at least one edit.
func (i *Issue) Fixable() bool {
	return i.Fix != nil && len(i.Fix.Edits) > 0
}

type AnalysisResult struct {
	Files            []string       `json:"files_analyzed"`
	TotalIssues      int            `json:"total_issues"`
	IssuesBySeverity map[string]int `json:"issues_by_severity"`
	IssuesByRule     map[string]int `json:"issues_by_rule"`
	Issues           []Issue        `json:"issues"`
	FixedIssues      int            `json:"fixed_issues"`
	AnalysisDuration string         `json:"analysis_duration"`
}

func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Files:            make([]string, 0),
		Issues:           make([]Issue, 0),
		IssuesBySeverity: make(map[string]int),
		IssuesByRule:     make(map[string]int),
	}
}

func (ar *AnalysisResult) AddIssue(issue Issue) {
	ar.Issues = append(ar.Issues, issue)
	ar.TotalIssues++
	ar.IssuesBySeverity[issue.Severity.String()]++
	ar.IssuesByRule[string(issue.Rule)]++
}

// CountAtLeast returns the number of issues with severity >= min.
func (ar *AnalysisResult) CountAtLeast(min Severity) int {
	n := 0
	for _, issue := range ar.Issues {
		if issue.Severity >= min {
			n++
		}
	}
	return n
}

// Fixable returns the number of issues that carry a fix.
func (ar *AnalysisResult) Fixable() int {
	n := 0
	for i := range ar.Issues {
		if ar.Issues[i].Fixable() {
			n++
		}
	}
	return n
}
