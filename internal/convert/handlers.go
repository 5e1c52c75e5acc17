package convert

import (
	"regexp"
	"strings"
)

// attrSpan is one interaction attribute occurrence in JSX, spanning
// from the whitespace before the attribute name through the end of its
// value.
type attrSpan struct {
	start, end int
	name       string
	value      string
	pointer    bool
}

// handlerFn is a lowercase-named function declared in the module body,
// a candidate event handler. pointer marks handlers that track the
// pointer, which decides the positional state role.
type handlerFn struct {
	name    string
	start   int
	end     int
	pointer bool
}

var interactionPrefixes = []string{
	"onClick", "onDoubleClick", "onContextMenu",
	"onChange", "onInput", "onSubmit", "onReset", "onSelect",
	"onKey",
	"onMouse", "onPointer", "onTouch", "onDrag",
	"onWheel", "onScroll",
	"onFocus", "onBlur",
	"onCopy", "onCut", "onPaste",
}

var pointerPrefixes = []string{
	"onMouse", "onPointer", "onTouch", "onDrag", "onWheel", "onScroll",
}

var (
	exprAttrRe    = regexp.MustCompile(`[ \t\n]on[A-Z][A-Za-z]*[ \t]*=[ \t]*\{`)
	literalAttrRe = regexp.MustCompile(`[ \t\n](on[A-Z][A-Za-z]*)=('[^'\n]*'|"[^"\n]*")`)

	arrowHandlerRe = regexp.MustCompile(`(?m)^[ \t]*(?:const|let|var)[ \t]+([a-z_$][A-Za-z0-9_$]*)[ \t]*=[ \t]*(?:async[ \t]+)?(?:\([^()\n]*\)|[A-Za-z_$][A-Za-z0-9_$]*)[ \t]*=>`)
	funcHandlerRe  = regexp.MustCompile(`(?m)^[ \t]*function[ \t]+([a-z_$][A-Za-z0-9_$]*)[ \t]*\(`)

	pointerNameRe = regexp.MustCompile(`(?i)mouse|pointer|drag|touch|move|wheel|scroll|hover`)
)

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// findInteractionAttrs locates every interaction attribute in the
// fenced source. Both expression values and string values are covered;
// the span always starts at the whitespace before the name so removal
// leaves clean tags behind.
func findInteractionAttrs(m *sourceModule) []attrSpan {
	src := m.fenced
	var out []attrSpan
	for _, loc := range exprAttrRe.FindAllStringIndex(src, -1) {
		nameStart := loc[0] + 1
		nameEnd := nameStart
		for nameEnd < len(src) && isIdentPart(src[nameEnd]) {
			nameEnd++
		}
		name := src[nameStart:nameEnd]
		if !hasAnyPrefix(name, interactionPrefixes) {
			continue
		}
		open := loc[1] - 1
		close := matchDelim(src, open, '{', '}')
		if close < 0 {
			continue
		}
		out = append(out, attrSpan{
			start:   loc[0],
			end:     close,
			name:    name,
			value:   strings.TrimSpace(src[open+1 : close-1]),
			pointer: hasAnyPrefix(name, pointerPrefixes),
		})
	}
	for _, loc := range literalAttrRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[loc[2]:loc[3]]
		if !hasAnyPrefix(name, interactionPrefixes) {
			continue
		}
		out = append(out, attrSpan{
			start:   loc[0],
			end:     loc[1],
			name:    name,
			pointer: hasAnyPrefix(name, pointerPrefixes),
		})
	}
	return out
}

// findHandlerFns indexes candidate handler functions and marks the
// pointer ones, either by name or because a pointer attribute
// references them.
func findHandlerFns(m *sourceModule, attrs []attrSpan) []handlerFn {
	src := m.fenced
	var out []handlerFn
	for _, loc := range arrowHandlerRe.FindAllStringSubmatchIndex(src, -1) {
		fn := handlerFn{
			name:  src[loc[2]:loc[3]],
			start: skipIndent(src, loc[0]),
		}
		fn.end = arrowBodyEnd(src, loc[1])
		fn.pointer = pointerNameRe.MatchString(fn.name)
		out = append(out, fn)
	}
	for _, loc := range funcHandlerRe.FindAllStringSubmatchIndex(src, -1) {
		fn := handlerFn{
			name:  src[loc[2]:loc[3]],
			start: skipIndent(src, loc[0]),
		}
		bodyOpen := strings.IndexByte(src[loc[1]:], '{')
		if bodyOpen < 0 {
			continue
		}
		fn.end = matchDelim(src, loc[1]+bodyOpen, '{', '}')
		if fn.end < 0 {
			fn.end = len(src)
		}
		fn.pointer = pointerNameRe.MatchString(fn.name)
		out = append(out, fn)
	}
	for i := range out {
		if out[i].pointer {
			continue
		}
		for _, a := range attrs {
			if a.pointer && identInExpr(a.value, out[i].name) {
				out[i].pointer = true
				break
			}
		}
	}
	return out
}

func identInExpr(expr, name string) bool {
	for i := 0; i+len(name) <= len(expr); i++ {
		if identAt(expr, i, name) {
			return true
		}
	}
	return false
}

// orphanedHandlers returns the handler functions that nothing will
// reference once the given attribute spans are removed. Handlers still
// called elsewhere stay in place.
func orphanedHandlers(m *sourceModule, attrs []attrSpan, fns []handlerFn) []handlerFn {
	src := m.fenced
	removed := make([][2]int, 0, len(attrs)+len(fns))
	for _, a := range attrs {
		removed = append(removed, [2]int{a.start, a.end})
	}
	for _, fn := range fns {
		removed = append(removed, [2]int{fn.start, fn.end})
	}
	var out []handlerFn
	for _, fn := range fns {
		if referencedOutside(src, fn.name, removed) {
			continue
		}
		out = append(out, fn)
	}
	return out
}

func referencedOutside(src, name string, removed [][2]int) bool {
	for i := 0; i+len(name) <= len(src); i++ {
		if !identAt(src, i, name) {
			continue
		}
		inRemoved := false
		for _, r := range removed {
			if i >= r[0] && i < r[1] {
				inRemoved = true
				break
			}
		}
		if !inRemoved {
			return true
		}
	}
	return false
}
