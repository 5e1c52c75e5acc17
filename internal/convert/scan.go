package convert

import (
	"sort"
	"strings"
)

// edit is a half-open byte span to replace. Edits are collected during
// analysis and applied in one pass so offsets stay valid.
type edit struct {
	start, end int
	text       string
}

// applyEdits applies replacements back to front. Overlapping spans keep
// the earlier-starting edit and drop the rest; analysis should not
// produce overlaps, but a dropped edit is recoverable where corrupted
// output is not.
func applyEdits(src string, edits []edit) string {
	if len(edits) == 0 {
		return src
	}
	sorted := make([]edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})
	var b strings.Builder
	b.Grow(len(src))
	pos := 0
	for _, e := range sorted {
		if e.start < pos || e.start > len(src) {
			continue
		}
		end := e.end
		if end > len(src) {
			end = len(src)
		}
		b.WriteString(src[pos:e.start])
		b.WriteString(e.text)
		pos = end
	}
	b.WriteString(src[pos:])
	return b.String()
}

// matchDelim returns the index just past the closer matching the opener
// at src[open], or -1 when the text runs out first. The input is
// expected to be fenced, so strings and comments no longer hide
// delimiters.
func matchDelim(src string, open int, opener, closer byte) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// statementSpan widens [start,end) to cover the statement containing
// it: back to the preceding newline or semicolon, forward past the
// terminating semicolon and one trailing newline. Used when a call
// expression is deleted and its whole statement should go with it.
func statementSpan(src string, start, end int) (int, int) {
	s := start
	for s > 0 {
		c := src[s-1]
		if c == '\n' || c == ';' || c == '{' {
			break
		}
		s--
	}
	e := end
	for e < len(src) && (src[e] == ' ' || src[e] == '\t') {
		e++
	}
	if e < len(src) && src[e] == ';' {
		e++
	}
	if e < len(src) && src[e] == '\n' {
		e++
	}
	return s, e
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// identAt reports whether src[i:] begins the identifier word and the
// match is not embedded in a longer identifier.
func identAt(src string, i int, word string) bool {
	if !strings.HasPrefix(src[i:], word) {
		return false
	}
	if i > 0 && isIdentPart(src[i-1]) {
		return false
	}
	j := i + len(word)
	return j >= len(src) || !isIdentPart(src[j])
}

// prevNonSpace returns the index of the last non-whitespace byte before
// i, or -1.
func prevNonSpace(src string, i int) int {
	for j := i - 1; j >= 0; j-- {
		switch src[j] {
		case ' ', '\t', '\n', '\r':
		default:
			return j
		}
	}
	return -1
}

// wordBefore returns the identifier ending at the last non-space byte
// before i, or "".
func wordBefore(src string, i int) string {
	j := prevNonSpace(src, i)
	if j < 0 || !isIdentPart(src[j]) {
		return ""
	}
	end := j + 1
	for j >= 0 && isIdentPart(src[j]) {
		j--
	}
	return src[j+1 : end]
}

// lineStart returns the index of the first byte of the line holding i.
func lineStart(src string, i int) int {
	for i > 0 && src[i-1] != '\n' {
		i--
	}
	return i
}

// lineEnd returns the index just past the newline ending the line
// holding i, or len(src).
func lineEnd(src string, i int) int {
	for i < len(src) {
		if src[i] == '\n' {
			return i + 1
		}
		i++
	}
	return i
}

// indentOf returns the leading whitespace of the line holding i.
func indentOf(src string, i int) string {
	start := lineStart(src, i)
	j := start
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	return src[start:j]
}

// countRuneBalance returns opens minus closes for the given pair.
func countRuneBalance(src string, opener, closer byte) int {
	n := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case opener:
			n++
		case closer:
			n--
		}
	}
	return n
}
