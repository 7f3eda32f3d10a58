package models

import (
	"fmt"

	"pycheck/internal/source"
)

// Applicability tells the fix engine whether a fix may be applied without review.
type Applicability uint8

const (
	ApplicabilitySafe Applicability = iota
	ApplicabilityUnsafe
	ApplicabilityDisplayOnly
)

func (a Applicability) String() string {
	switch a {
	case ApplicabilitySafe:
		return "safe"
	case ApplicabilityUnsafe:
		return "unsafe"
	case ApplicabilityDisplayOnly:
		return "display-only"
	default:
		return "unknown"
	}
}

func (a Applicability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Applicability) UnmarshalText(text []byte) error {
	switch string(text) {
	case "safe":
		*a = ApplicabilitySafe
	case "unsafe":
		*a = ApplicabilityUnsafe
	case "display-only":
		*a = ApplicabilityDisplayOnly
	default:
		return fmt.Errorf("unknown applicability %q", text)
	}
	return nil
}

// Region is a 1-based line/column range, columns counted in runes.
type Region struct {
	Line      int `json:"line"`
	Column    int `json:"column"`
	EndLine   int `json:"end_line"`
	EndColumn int `json:"end_column"`
}

// Edit replaces the bytes in Span with NewText. Region is filled in once the
// edit is attached to an issue.
type Edit struct {
	Span    source.Span `json:"span"`
	NewText string      `json:"new_text"`
	Region  *Region     `json:"region,omitempty"`
}

// Replacement returns an edit replacing span with text.
func Replacement(span source.Span, text string) Edit {
	return Edit{Span: span, NewText: text}
}

type Fix struct {
	Title         string        `json:"title"`
	Applicability Applicability `json:"applicability"`
	Edits         []Edit        `json:"edits"`
}

// SafeFix builds a fix that can always be applied automatically.
func SafeFix(title string, edits ...Edit) *Fix {
	return &Fix{Title: title, Applicability: ApplicabilitySafe, Edits: edits}
}

// Diagnostic is what a rule reports for one occurrence, anchored to a byte span.
type Diagnostic struct {
	Rule    RuleCode
	Name    string
	Message string
	Span    source.Span
	Fix     *Fix
}
