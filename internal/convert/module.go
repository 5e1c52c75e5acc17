package convert

import (
	"regexp"
	"strings"
)

// importDecl is one import statement located in the fenced source. The
// path is already resolved back through the fence set.
type importDecl struct {
	start, end int
	clause     string
	path       string
	sideEffect bool
}

type declKind int

const (
	declFunction declKind = iota
	declArrowConst
	declFunctionExpr
)

// componentDecl is a top-level capitalized component declaration.
type componentDecl struct {
	name            string
	kind            declKind
	start           int
	bodyStart       int
	end             int
	annotation      string
	exported        bool
	exportedDefault bool
}

// sourceModule is the fenced working form of one input file plus
// everything the passes need to look up about it.
type sourceModule struct {
	raw     string
	fenced  string
	fences  *fenceSet
	opts    Options
	imports []importDecl
	decls   []componentDecl
}

var (
	importFromRe = regexp.MustCompile(`(?s)\bimport\b([^;'"]*?)\bfrom\s*['"]([^'"\n]*)['"][ \t]*;?`)
	importBareRe = regexp.MustCompile(`\bimport[ \t]*['"]([^'"\n]*)['"][ \t]*;?`)

	functionDeclRe = regexp.MustCompile(`(?m)^[ \t]*(export[ \t]+(default[ \t]+)?)?function[ \t]+([A-Z][A-Za-z0-9_$]*)[ \t]*\(`)
	arrowDeclRe    = regexp.MustCompile(`(?m)^[ \t]*(export[ \t]+(default[ \t]+)?)?const[ \t]+([A-Z][A-Za-z0-9_$]*)[ \t]*(:[^=\n]*)?=[ \t]*(async[ \t]+)?(\([^()]*\)|[A-Za-z_$][A-Za-z0-9_$]*)[ \t]*=>`)
	funcExprDeclRe = regexp.MustCompile(`(?m)^[ \t]*(export[ \t]+(default[ \t]+)?)?const[ \t]+([A-Z][A-Za-z0-9_$]*)[ \t]*(:[^=\n]*)?=[ \t]*function[ \t]*\(`)
)

// parseModule fences the source and indexes its imports and component
// declarations. The only unrecoverable inputs are an effectively empty
// module and literals that never terminate.
func parseModule(src string, opts Options) (*sourceModule, error) {
	if strings.TrimSpace(src) == "" {
		return nil, parseFailure("empty source", 0)
	}
	fenced, fences, err := guardSource(src)
	if err != nil {
		return nil, err
	}
	m := &sourceModule{raw: src, fenced: fenced, fences: fences, opts: opts}
	m.scanImports()
	m.scanComponents()
	return m, nil
}

// rescan reindexes imports and declarations after a pass rewrote the
// fenced text. Spans held from before a rescan are stale.
func (m *sourceModule) rescan(fenced string) {
	m.fenced = fenced
	m.scanImports()
	m.scanComponents()
}

func (m *sourceModule) scanImports() {
	m.imports = m.imports[:0]
	taken := make([][2]int, 0, 8)
	for _, loc := range importFromRe.FindAllStringSubmatchIndex(m.fenced, -1) {
		start, end := loc[0], loc[1]
		clause := strings.TrimSpace(m.fenced[loc[2]:loc[3]])
		path := m.fences.resolve(m.fenced[loc[4]:loc[5]])
		start = lineStart(m.fenced, start)
		end = lineEnd(m.fenced, end-1)
		m.imports = append(m.imports, importDecl{start: start, end: end, clause: clause, path: path})
		taken = append(taken, [2]int{start, end})
	}
	for _, loc := range importBareRe.FindAllStringSubmatchIndex(m.fenced, -1) {
		start, end := loc[0], loc[1]
		overlaps := false
		for _, t := range taken {
			if start < t[1] && end > t[0] {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		path := m.fences.resolve(m.fenced[loc[2]:loc[3]])
		start = lineStart(m.fenced, start)
		end = lineEnd(m.fenced, end-1)
		m.imports = append(m.imports, importDecl{start: start, end: end, path: path, sideEffect: true})
	}
}

func (m *sourceModule) findImport(path string) *importDecl {
	for i := range m.imports {
		if m.imports[i].path == path && !m.imports[i].sideEffect {
			return &m.imports[i]
		}
	}
	return nil
}

func (m *sourceModule) scanComponents() {
	m.decls = m.decls[:0]
	src := m.fenced
	for _, loc := range functionDeclRe.FindAllStringSubmatchIndex(src, -1) {
		d := componentDecl{
			kind:            declFunction,
			start:           skipIndent(src, loc[0]),
			name:            src[loc[6]:loc[7]],
			exported:        loc[2] >= 0,
			exportedDefault: loc[4] >= 0,
		}
		parenEnd := matchDelim(src, loc[1]-1, '(', ')')
		if parenEnd < 0 {
			continue
		}
		bodyOpen := strings.IndexByte(src[parenEnd:], '{')
		if bodyOpen < 0 {
			continue
		}
		d.bodyStart = parenEnd + bodyOpen
		d.end = matchDelim(src, d.bodyStart, '{', '}')
		if d.end < 0 {
			d.end = len(src)
		}
		m.decls = append(m.decls, d)
	}
	for _, loc := range funcExprDeclRe.FindAllStringSubmatchIndex(src, -1) {
		d := componentDecl{
			kind:            declFunctionExpr,
			start:           skipIndent(src, loc[0]),
			name:            src[loc[6]:loc[7]],
			exported:        loc[2] >= 0,
			exportedDefault: loc[4] >= 0,
		}
		if loc[8] >= 0 {
			d.annotation = strings.TrimSpace(src[loc[8]:loc[9]])
		}
		parenEnd := matchDelim(src, loc[1]-1, '(', ')')
		if parenEnd < 0 {
			continue
		}
		bodyOpen := strings.IndexByte(src[parenEnd:], '{')
		if bodyOpen < 0 {
			continue
		}
		d.bodyStart = parenEnd + bodyOpen
		d.end = matchDelim(src, d.bodyStart, '{', '}')
		if d.end < 0 {
			d.end = len(src)
		} else if d.end < len(src) && src[d.end] == ';' {
			d.end++
		}
		m.decls = append(m.decls, d)
	}
	for _, loc := range arrowDeclRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[loc[6]:loc[7]]
		if m.declared(name) {
			continue
		}
		d := componentDecl{
			kind:            declArrowConst,
			start:           skipIndent(src, loc[0]),
			name:            name,
			exported:        loc[2] >= 0,
			exportedDefault: loc[4] >= 0,
		}
		if loc[8] >= 0 {
			d.annotation = strings.TrimSpace(src[loc[8]:loc[9]])
		}
		d.bodyStart = loc[1]
		d.end = arrowBodyEnd(src, loc[1])
		m.decls = append(m.decls, d)
	}
	// Restore source order so root resolution's "first component" rule
	// means first in the file, not first by kind.
	sortDeclsByStart(m.decls)
}

func (m *sourceModule) declared(name string) bool {
	for _, d := range m.decls {
		if d.name == name {
			return true
		}
	}
	return false
}

func (m *sourceModule) decl(name string) *componentDecl {
	for i := range m.decls {
		if m.decls[i].name == name {
			return &m.decls[i]
		}
	}
	return nil
}

func sortDeclsByStart(decls []componentDecl) {
	for i := 1; i < len(decls); i++ {
		for j := i; j > 0 && decls[j].start < decls[j-1].start; j-- {
			decls[j], decls[j-1] = decls[j-1], decls[j]
		}
	}
}

func skipIndent(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i
}

// arrowBodyEnd finds the end of an arrow function whose => sits just
// before i. Block bodies end at the matching brace; expression bodies
// end at the first top-level semicolon or at a newline that does not
// continue the expression.
func arrowBodyEnd(src string, i int) int {
	j := i
	for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n') {
		j++
	}
	if j >= len(src) {
		return len(src)
	}
	switch src[j] {
	case '{':
		end := matchDelim(src, j, '{', '}')
		if end < 0 {
			return len(src)
		}
		if end < len(src) && src[end] == ';' {
			end++
		}
		return end
	case '(':
		end := matchDelim(src, j, '(', ')')
		if end < 0 {
			return len(src)
		}
		if end < len(src) && src[end] == ';' {
			end++
		}
		return end
	}
	depth := 0
	for ; j < len(src); j++ {
		switch src[j] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return j
			}
			depth--
		case ';':
			if depth == 0 {
				return j + 1
			}
		case '\n':
			if depth == 0 {
				return j
			}
		}
	}
	return len(src)
}

// importCount counts import statements, jsxTagCount approximates the
// number of JSX open tags. Both feed classification only.
func (m *sourceModule) importCount() int { return len(m.imports) }

var jsxOpenRe = regexp.MustCompile(`<[A-Za-z]`)

func (m *sourceModule) jsxTagCount() int {
	return len(jsxOpenRe.FindAllStringIndex(m.fenced, -1))
}
