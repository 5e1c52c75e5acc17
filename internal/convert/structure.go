package convert

import (
	"fmt"
	"regexp"
	"strings"
)

// findTagEnd returns the index just past the '>' closing the tag that
// opens at src[i], plus whether the tag is self-closing. Brace
// expressions in attribute values are crossed so a '>' inside an arrow
// function does not end the tag.
func findTagEnd(src string, i int) (int, bool) {
	for j := i; j < len(src); j++ {
		switch src[j] {
		case '{':
			end := matchDelim(src, j, '{', '}')
			if end < 0 {
				return -1, false
			}
			j = end - 1
		case '>':
			return j + 1, j > i && src[j-1] == '/'
		}
	}
	return -1, false
}

// unwrapWrapper removes authoring-tool wrapper elements. Paired tags
// are deleted and their children promoted in place; a self-closing
// wrapper carrying component={X} collapses to <X />. Each intervention
// is recorded as a structural repair.
func unwrapWrapper(m *sourceModule, res *Result) string {
	name := m.opts.WrapperElement
	src := m.fenced
	openRe := regexp.MustCompile(`<` + regexp.QuoteMeta(name) + `\b`)
	closeRe := regexp.MustCompile(`</[ \t]*` + regexp.QuoteMeta(name) + `[ \t]*>`)
	componentAttrRe := regexp.MustCompile(`\bcomponent[ \t]*=[ \t]*\{\s*([A-Za-z_$][A-Za-z0-9_$.]*)\s*\}`)

	for guard := 0; guard < 64; guard++ {
		loc := openRe.FindStringIndex(src)
		if loc == nil {
			return src
		}
		tagEnd, selfClosing := findTagEnd(src, loc[0])
		if tagEnd < 0 {
			return src
		}
		var edits []edit
		if selfClosing {
			tag := src[loc[0]:tagEnd]
			if attr := componentAttrRe.FindStringSubmatch(tag); attr != nil {
				edits = append(edits, edit{start: loc[0], end: tagEnd, text: "<" + attr[1] + " />"})
				res.note(NoteStructuralRepair,
					fmt.Sprintf("replaced self-closing <%s component={%s}> with <%s />", name, attr[1], attr[1]))
			} else {
				edits = append(edits, edit{start: loc[0], end: tagEnd})
				res.note(NoteStructuralRepair,
					fmt.Sprintf("removed self-closing <%s> wrapper", name))
			}
		} else {
			close := matchingWrapperClose(src, tagEnd, openRe, closeRe)
			if close == nil {
				// Open tag with no close; drop the tag alone.
				edits = append(edits, edit{start: loc[0], end: tagEnd})
				res.note(NoteStructuralRepair,
					fmt.Sprintf("removed unmatched <%s> wrapper tag", name))
			} else {
				edits = append(edits, edit{start: loc[0], end: tagEnd})
				edits = append(edits, edit{start: close[0], end: close[1]})
				res.note(NoteStructuralRepair,
					fmt.Sprintf("unwrapped <%s> wrapper, children promoted", name))
			}
		}
		src = applyEdits(src, edits)
	}
	return src
}

// matchingWrapperClose finds the close tag pairing with the wrapper
// whose open tag ends at 'from', tracking nesting depth.
func matchingWrapperClose(src string, from int, openRe, closeRe *regexp.Regexp) []int {
	depth := 1
	pos := from
	for {
		open := openRe.FindStringIndex(src[pos:])
		close := closeRe.FindStringIndex(src[pos:])
		if close == nil {
			return nil
		}
		if open != nil && open[0] < close[0] {
			// Skip past the nested open tag.
			tagEnd, selfClosing := findTagEnd(src, pos+open[0])
			if tagEnd < 0 {
				return nil
			}
			if !selfClosing {
				depth++
			}
			pos = tagEnd
			continue
		}
		depth--
		if depth == 0 {
			return []int{pos + close[0], pos + close[1]}
		}
		pos += close[1]
	}
}

// repairDelimiters appends the closers a truncated module is missing,
// parens before braces so expression groups close inside their blocks.
// Surpluses are left alone; deleting text risks more than it saves.
func repairDelimiters(src string, res *Result) string {
	braceNet := countRuneBalance(src, '{', '}')
	parenNet := countRuneBalance(src, '(', ')')
	if braceNet <= 0 && parenNet <= 0 {
		return src
	}
	var b strings.Builder
	b.WriteString(src)
	if !strings.HasSuffix(src, "\n") {
		b.WriteByte('\n')
	}
	if parenNet > 0 {
		b.WriteString(strings.Repeat(")", parenNet))
	}
	if braceNet > 0 {
		b.WriteString(strings.Repeat("}", braceNet))
	}
	b.WriteByte('\n')
	if parenNet > 0 {
		res.note(NoteStructuralRepair, fmt.Sprintf("appended %d missing closing paren(s)", parenNet))
	}
	if braceNet > 0 {
		res.note(NoteStructuralRepair, fmt.Sprintf("appended %d missing closing brace(s)", braceNet))
	}
	return b.String()
}
