// Package fix applies the edits attached to reported issues.
package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"pycheck/internal/models"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// Options configures which fixes are selected and whether files are written.
type Options struct {
	UnsafeFixes bool
	// DryRun computes the fixed content without writing files.
	DryRun bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Rule          models.RuleCode
	Message       string
	Applicability models.Applicability
	Path          string
	Line          int
	EditCount     int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Path   string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
	Original  []byte
	Fixed     []byte
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	issue models.Issue
	fix   models.Fix
	id    string
	order int
}

// Apply collects fixes from issues, selects them according to opts and
// rewrites the affected files.
func Apply(issues []models.Issue, opts Options) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}

	candidates, buildSkips := gatherCandidates(issues)
	result.Skipped = append(result.Skipped, buildSkips...)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	applied, skipped, changes, err := applyCandidates(selected, opts)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, skipped...)
	result.FileChanges = append(result.FileChanges, changes...)
	if err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

func gatherCandidates(issues []models.Issue) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0)
	skips := make([]SkippedFix, 0)

	for i, issue := range issues {
		if issue.Fix == nil {
			continue
		}
		id := fmt.Sprintf("%s-%s-%d-%d", issue.Rule, issue.File, issue.Line, issue.Column)
		if len(issue.Fix.Edits) == 0 {
			skips = append(skips, SkippedFix{
				ID:     id,
				Title:  issue.Fix.Title,
				Path:   issue.File,
				Reason: "fix has no edits",
			})
			continue
		}
		cands = append(cands, candidate{
			issue: issue,
			fix:   *issue.Fix,
			id:    id,
			order: i,
		})
	}
	return cands, skips
}

// sortCandidates orders candidates by file, position, insertion order and rule.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.issue.File != b.issue.File {
			return a.issue.File < b.issue.File
		}
		as, bs := firstEdit(a.fix), firstEdit(b.fix)
		if as.Span.Start != bs.Span.Start {
			return as.Span.Start < bs.Span.Start
		}
		if as.Span.End != bs.Span.End {
			return as.Span.End < bs.Span.End
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.issue.Rule < b.issue.Rule
	})
}

func firstEdit(f models.Fix) models.Edit {
	first := f.Edits[0]
	for _, e := range f.Edits[1:] {
		if e.Span.Start < first.Span.Start {
			first = e
		}
	}
	return first
}

func selectCandidates(candidates []candidate, opts Options) ([]candidate, []SkippedFix) {
	selected := make([]candidate, 0, len(candidates))
	skipped := make([]SkippedFix, 0)
	for _, cand := range candidates {
		switch cand.fix.Applicability {
		case models.ApplicabilitySafe:
			selected = append(selected, cand)
			continue
		case models.ApplicabilityUnsafe:
			if opts.UnsafeFixes {
				selected = append(selected, cand)
				continue
			}
		}
		skipped = append(skipped, SkippedFix{
			ID:     cand.id,
			Title:  cand.fix.Title,
			Path:   cand.issue.File,
			Reason: fmt.Sprintf("applicability is %s", cand.fix.Applicability),
		})
	}
	return selected, skipped
}

func applyCandidates(selected []candidate, opts Options) ([]AppliedFix, []SkippedFix, []FileChange, error) {
	applied := make([]AppliedFix, 0, len(selected))
	skipped := make([]SkippedFix, 0)

	byFile := make(map[string][]candidate)
	var paths []string
	for _, cand := range selected {
		if _, seen := byFile[cand.issue.File]; !seen {
			paths = append(paths, cand.issue.File)
		}
		byFile[cand.issue.File] = append(byFile[cand.issue.File], cand)
	}
	sort.Strings(paths)

	fileChanges := make([]FileChange, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			for _, cand := range byFile[path] {
				skipped = append(skipped, SkippedFix{
					ID:     cand.id,
					Title:  cand.fix.Title,
					Path:   path,
					Reason: fmt.Sprintf("read %s: %v", path, err),
				})
			}
			continue
		}

		var accepted []models.Edit
		for _, cand := range byFile[path] {
			if reason := checkEdits(content, accepted, cand.fix.Edits); reason != "" {
				skipped = append(skipped, SkippedFix{
					ID:     cand.id,
					Title:  cand.fix.Title,
					Path:   path,
					Reason: reason,
				})
				continue
			}
			accepted = append(accepted, cand.fix.Edits...)
			applied = append(applied, AppliedFix{
				ID:            cand.id,
				Title:         cand.fix.Title,
				Rule:          cand.issue.Rule,
				Message:       cand.issue.Message,
				Applicability: cand.fix.Applicability,
				Path:          path,
				Line:          cand.issue.Line,
				EditCount:     len(cand.fix.Edits),
			})
		}
		if len(accepted) == 0 {
			continue
		}

		fixed, err := ApplyToSource(content, accepted)
		if err != nil {
			return applied, skipped, fileChanges, fmt.Errorf("apply fixes to %s: %w", path, err)
		}
		if !opts.DryRun {
			if err := writePreservingMode(path, fixed); err != nil {
				return applied, skipped, fileChanges, err
			}
		}
		fileChanges = append(fileChanges, FileChange{
			Path:      path,
			EditCount: len(accepted),
			Original:  content,
			Fixed:     fixed,
		})
	}
	return applied, skipped, fileChanges, nil
}

// checkEdits returns a skip reason, or "" when edits fit content and do not
// overlap anything already accepted.
func checkEdits(content []byte, accepted, edits []models.Edit) string {
	for i, e := range edits {
		if e.Span.Start > e.Span.End || int(e.Span.End) > len(content) {
			return "edit span out of range"
		}
		for _, prev := range accepted {
			if spansConflict(prev, e) {
				return "conflicts with previously applied edits"
			}
		}
		for _, other := range edits[i+1:] {
			if spansConflict(other, e) {
				return "fix contains overlapping edits"
			}
		}
	}
	return ""
}

func writePreservingMode(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// spansConflict reports whether two edits' spans overlap. Two insertions
// never conflict; an insertion conflicts with a replacement that strictly
// covers its position.
func spansConflict(a, b models.Edit) bool {
	return a.Span.Overlaps(b.Span)
}
