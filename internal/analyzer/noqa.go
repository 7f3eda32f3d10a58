package analyzer

import (
	"regexp"
	"strings"

	"pycheck/internal/models"
	"pycheck/internal/source"
)

// Matches `# noqa` and `# noqa: PLE1141, E501` at the end of a comment.
var noqaPattern = regexp.MustCompile(`(?i)#\s*noqa(?::\s*([A-Za-z]+[0-9]+(?:[\s,]+[A-Za-z]+[0-9]+)*))?`)

// noqaDirectives maps a 1-based line to the codes it suppresses. An empty
// slice suppresses everything on that line.
type noqaDirectives map[int][]string

func parseNoqa(lines *source.LineIndex) noqaDirectives {
	directives := make(noqaDirectives)
	for n := 1; n <= lines.LineCount(); n++ {
		text := lines.Line(n)
		if !strings.Contains(text, "#") {
			continue
		}
		m := noqaPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		codes := make([]string, 0)
		for _, code := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			codes = append(codes, strings.ToUpper(code))
		}
		directives[n] = codes
	}
	return directives
}

func (d noqaDirectives) suppresses(line int, rule models.RuleCode) bool {
	codes, ok := d[line]
	if !ok {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, code := range codes {
		if code == strings.ToUpper(string(rule)) {
			return true
		}
	}
	return false
}
