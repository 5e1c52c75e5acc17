package convert

import (
	"fmt"
	"sort"
	"strings"
)

// fenceSet records the literal text hidden behind placeholders while
// the structural passes run. Delimiters stay visible in the fenced
// source; only the contents move in here. Placeholder names are valid
// JS identifiers, so fenced source stays scannable.
type fenceSet struct {
	values map[string]string
	nStr   int
	nTpl   int
	nCmt   int
	nRaw   int
}

func newFenceSet() *fenceSet {
	return &fenceSet{values: make(map[string]string)}
}

func (f *fenceSet) add(kind string, content string) string {
	var n *int
	switch kind {
	case "STR":
		n = &f.nStr
	case "TPL":
		n = &f.nTpl
	case "CMT":
		n = &f.nCmt
	default:
		n = &f.nRaw
		kind = "RAW"
	}
	*n++
	name := fmt.Sprintf("__FW_%s_%d__", kind, *n)
	f.values[name] = content
	return name
}

// lookup returns the hidden content for a placeholder token.
func (f *fenceSet) lookup(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// resolve expands a single placeholder if s is one, else returns s.
func (f *fenceSet) resolve(s string) string {
	if v, ok := f.values[s]; ok {
		return v
	}
	return s
}

// restore substitutes every placeholder in s with its original text.
// Deterministic order keeps output stable when contents themselves
// happen to contain placeholder-shaped text.
func (f *fenceSet) restore(s string) string {
	if len(f.values) == 0 {
		return s
	}
	names := make([]string, 0, len(f.values))
	for name := range f.values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s = strings.ReplaceAll(s, name, f.values[name])
	}
	return s
}

// stringStartKeywords are the words after which a quote or slash reads
// as the start of a literal rather than prose.
var stringStartKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "in": true,
	"of": true, "new": true, "do": true, "else": true,
	"void": true, "delete": true, "instanceof": true,
	"yield": true, "await": true, "throw": true,
}

// quoteStartsString decides whether the quote at src[i] opens a string
// literal. JSX text freely contains apostrophes ("it's"), so a quote
// only opens a literal after an operator, an opening bracket, or a
// keyword. A bare '>' reads as a JSX tag close (text follows); '=>'
// reads as an arrow (expression follows).
func quoteStartsString(src string, i int) bool {
	j := prevNonSpace(src, i)
	if j < 0 {
		return true
	}
	switch src[j] {
	case '=', '(', '[', '{', ',', ':', ';', '!', '&', '|', '?', '+', '-', '*', '/', '%', '<', '~', '^':
		return true
	case '>':
		return j > 0 && src[j-1] == '='
	}
	return stringStartKeywords[wordBefore(src, i)]
}

// slashStartsRegex is the equivalent decision for '/'. A slash after
// '<' is a JSX closing-tag marker, never a regex, so the context set is
// narrower than the string one.
func slashStartsRegex(src string, i int) bool {
	j := prevNonSpace(src, i)
	if j < 0 {
		return true
	}
	switch src[j] {
	case '=', '(', '[', '{', ',', ':', ';', '!', '&', '|', '?', '+', '-', '*', '%', '~', '^':
		return true
	case '>':
		return j > 0 && src[j-1] == '='
	}
	return stringStartKeywords[wordBefore(src, i)]
}

// scanString returns the index just past the closing quote, or -1 when
// a raw newline or the end of input arrives first. A -1 tells the
// caller to treat the opening quote as plain text, which is how stray
// apostrophes in JSX prose survive.
func scanString(src string, i int) int {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return -1
		case quote:
			return j + 1
		}
	}
	return -1
}

// scanTemplate returns the index just past the closing backtick, or -1
// when input ends first. Embedded ${...} expressions are crossed with
// brace tracking so braces, quotes, and nested templates inside them do
// not end the scan early.
func scanTemplate(src string, i int) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '`':
			return j + 1
		case '$':
			if j+1 < len(src) && src[j+1] == '{' {
				end := scanTemplateExpr(src, j+2)
				if end < 0 {
					return -1
				}
				j = end - 1
			}
		}
	}
	return -1
}

// scanTemplateExpr walks a ${...} body starting just past the opening
// brace and returns the index just past its closing brace.
func scanTemplateExpr(src string, i int) int {
	depth := 1
	for j := i; j < len(src); j++ {
		switch src[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		case '\'', '"':
			if end := scanString(src, j); end > 0 {
				j = end - 1
			}
		case '`':
			end := scanTemplate(src, j)
			if end < 0 {
				return -1
			}
			j = end - 1
		}
	}
	return -1
}

// scanRegex returns the index just past the closing slash of a regex
// literal, or -1 when a newline or the end of input arrives first,
// which tells the caller the slash was division after all. Character
// classes are crossed so a '/' inside [...] does not terminate.
func scanRegex(src string, i int) int {
	inClass := false
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return -1
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return j + 1
			}
		}
	}
	return -1
}

// guardSource replaces the contents of strings, template literals,
// comments, and regex literals with placeholder identifiers, keeping
// the delimiters in place. Structural passes then scan the fenced text
// without literal contents masquerading as syntax. Numeric literals are
// left alone so keyframe repair can read them.
func guardSource(src string) (string, *fenceSet, error) {
	fences := newFenceSet()
	var b strings.Builder
	b.Grow(len(src))
	i := 0
	for i < len(src) {
		c := src[i]
		switch c {
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				end := lineEnd(src, i)
				body := src[i+2 : end]
				nl := ""
				if strings.HasSuffix(body, "\n") {
					body = body[:len(body)-1]
					nl = "\n"
				}
				b.WriteString("//")
				if body != "" {
					b.WriteString(fences.add("CMT", body))
				}
				b.WriteString(nl)
				i = end
				continue
			}
			if i+1 < len(src) && src[i+1] == '*' {
				close := strings.Index(src[i+2:], "*/")
				if close < 0 {
					return "", nil, parseFailure("unterminated block comment", i)
				}
				body := src[i+2 : i+2+close]
				b.WriteString("/*")
				if body != "" {
					b.WriteString(fences.add("CMT", body))
				}
				b.WriteString("*/")
				i = i + 2 + close + 2
				continue
			}
			if slashStartsRegex(src, i) {
				if end := scanRegex(src, i); end > 0 {
					body := src[i+1 : end-1]
					b.WriteByte('/')
					if body != "" {
						b.WriteString(fences.add("RAW", body))
					}
					b.WriteByte('/')
					i = end
					continue
				}
			}
			b.WriteByte(c)
			i++
		case '\'', '"':
			if !quoteStartsString(src, i) {
				b.WriteByte(c)
				i++
				continue
			}
			end := scanString(src, i)
			if end < 0 {
				b.WriteByte(c)
				i++
				continue
			}
			body := src[i+1 : end-1]
			b.WriteByte(c)
			if body != "" {
				b.WriteString(fences.add("STR", body))
			}
			b.WriteByte(c)
			i = end
		case '`':
			end := scanTemplate(src, i)
			if end < 0 {
				return "", nil, parseFailure("unterminated template literal", i)
			}
			body := src[i+1 : end-1]
			b.WriteByte('`')
			if body != "" {
				b.WriteString(fences.add("TPL", body))
			}
			b.WriteByte('`')
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), fences, nil
}
