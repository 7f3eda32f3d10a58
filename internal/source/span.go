package source

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) within a single file.
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

func NewSpan(start, end uint32) Span {
	return Span{Start: start, End: end}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Contains reports whether other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
// Zero-length spans overlap a non-empty span when they sit strictly inside it.
func (s Span) Overlaps(other Span) bool {
	if s.Empty() && other.Empty() {
		return false
	}
	if s.Empty() {
		return other.Start <= s.Start && s.Start < other.End
	}
	if other.Empty() {
		return s.Start <= other.Start && other.Start < s.End
	}
	return s.Start < other.End && other.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Text returns the bytes covered by the span, or "" when the span does not fit content.
func (s Span) Text(content []byte) string {
	if s.End < s.Start || int(s.End) > len(content) {
		return ""
	}
	return string(content[s.Start:s.End])
}

// LineIndex maps byte offsets to 1-based line/column positions.
type LineIndex struct {
	content    []byte
	lineStarts []uint32
}

func NewLineIndex(content []byte) *LineIndex {
	starts := []uint32{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &LineIndex{content: content, lineStarts: starts}
}

// Position returns the 1-based line and 1-based column (in runes) of offset.
func (li *LineIndex) Position(offset uint32) (line, col int) {
	if int(offset) > len(li.content) {
		offset = uint32(len(li.content))
	}
	idx := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	start := li.lineStarts[idx]
	return idx + 1, utf8.RuneCount(li.content[start:offset]) + 1
}

// Line returns the text of the 1-based line n without its trailing newline.
func (li *LineIndex) Line(n int) string {
	if n < 1 || n > len(li.lineStarts) {
		return ""
	}
	start := li.lineStarts[n-1]
	end := uint32(len(li.content))
	if n < len(li.lineStarts) {
		end = li.lineStarts[n] - 1
	}
	line := li.content[start:end]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return string(line)
}

func (li *LineIndex) LineCount() int {
	return len(li.lineStarts)
}
