package detectors

import (
	"fmt"
	"sort"
	"strings"

	"pycheck/internal/models"
	"pycheck/internal/pyast"
)

const DictIterMissingItemsName = "dict-iter-missing-items"

// Detector finds one kind of issue in a parsed module.
type Detector interface {
	Name() string
	Code() models.RuleCode
	Detect(mod *pyast.Module, sem Semantic) []models.Diagnostic
}

// Rule describes a registered detector.
type Rule struct {
	Code        models.RuleCode
	Name        string
	Summary     string
	Explanation string
	Fixable     bool
	Severity    models.Severity
	New         func() Detector
}

var rules = []Rule{
	{
		Code:     models.RuleDictIterMissingItems,
		Name:     DictIterMissingItemsName,
		Summary:  "Unpacking a dictionary in a for loop without calling .items()",
		Fixable:  true,
		Severity: models.SeverityError,
		Explanation: `## What it does
Checks for unpacking a dictionary in a for loop without calling ` + "`.items()`" + `.

## Why is this bad?
Iterating a dictionary yields its keys only. Unpacking each key into two
names fails at runtime unless every key happens to be a pair; the intent
is almost always to iterate key/value pairs, which requires ` + "`.items()`" + `.

## Example
    data = {"Paris": 2_165_423, "New York City": 8_804_190}
    for city, population in data:
        print(f"{city} has population {population}.")

Use instead:
    data = {"Paris": 2_165_423, "New York City": 8_804_190}
    for city, population in data.items():
        print(f"{city} has population {population}.")
`,
		New: func() Detector { return NewDictIterMissingItemsDetector() },
	},
}

// Rules returns every registered rule ordered by code.
func Rules() []Rule {
	out := append([]Rule(nil), rules...)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Lookup finds a rule by code or name, case-insensitively.
func Lookup(codeOrName string) (Rule, bool) {
	key := strings.TrimSpace(codeOrName)
	for _, r := range rules {
		if strings.EqualFold(string(r.Code), key) || strings.EqualFold(r.Name, key) {
			return r, true
		}
	}
	return Rule{}, false
}

// Select returns fresh detectors for enabled rules. enabled is called with
// each rule; a nil func enables everything.
func Select(enabled func(Rule) bool) []Detector {
	var out []Detector
	for _, r := range Rules() {
		if enabled == nil || enabled(r) {
			out = append(out, r.New())
		}
	}
	return out
}

// MatchesSelector reports whether sel selects the rule. A selector is a
// full code, a code prefix such as "PLE", a rule name, or "ALL".
func (r Rule) MatchesSelector(sel string) bool {
	sel = strings.ToUpper(strings.TrimSpace(sel))
	if sel == "" {
		return false
	}
	if sel == "ALL" {
		return true
	}
	if strings.HasPrefix(string(r.Code), sel) {
		return true
	}
	return strings.EqualFold(r.Name, sel)
}

// ValidateSelector returns an error if sel matches no registered rule.
func ValidateSelector(sel string) error {
	for _, r := range rules {
		if r.MatchesSelector(sel) {
			return nil
		}
	}
	return fmt.Errorf("unknown rule selector %q", sel)
}
