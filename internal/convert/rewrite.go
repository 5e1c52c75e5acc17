package convert

import (
	"fmt"
	"regexp"
	"strings"
)

var jsxInStatementRe = regexp.MustCompile(`<[A-Za-z]`)

// eliminateHooks rewrites the fenced source into its frame-pure form:
// state declarations become deterministic initializers, effects and
// interaction attributes disappear, orphaned handlers go with them,
// and a frame binding is injected when any state became frame
// arithmetic. Returns the rewritten fenced text.
func eliminateHooks(m *sourceModule, res *Result) string {
	src := m.fenced
	effects := findEffects(m)
	states := findStates(m)
	attrs := findInteractionAttrs(m)
	fns := findHandlerFns(m, attrs)
	inferRoles(m, states, effects, attrs, fns)
	orphans := orphanedHandlers(m, attrs, fns)

	var edits []edit
	removed := make([][2]int, 0, len(effects)+len(attrs)+len(orphans)+len(states))

	for _, e := range effects {
		edits = append(edits, edit{start: e.start, end: e.end})
		removed = append(removed, [2]int{e.start, e.end})
	}
	for _, a := range attrs {
		edits = append(edits, edit{start: a.start, end: a.end})
		removed = append(removed, [2]int{a.start, a.end})
	}
	for _, fn := range orphans {
		start, end := statementSpan(src, fn.start, fn.end)
		edits = append(edits, edit{start: start, end: end})
		removed = append(removed, [2]int{start, end})
	}

	needFrame := false
	firstFrameDecl := -1
	for i := range states {
		b := &states[i]
		indent := indentOf(src, b.start)
		line := fmt.Sprintf("%sconst %s = %s;\n", indent, b.name, b.frameExpr)
		switch b.role {
		case roleCounter, roleToggle, roleSelection:
			if !needFrame {
				needFrame = true
				firstFrameDecl = i
			}
		case roleUnclassifiable:
			res.note(NoteUnclassifiableBinding,
				fmt.Sprintf("state %q has no frame equivalent; frozen at its initial value", b.name))
		}
		edits = append(edits, edit{start: b.start, end: b.end, text: line})
		removed = append(removed, [2]int{b.start, b.end})
	}
	if needFrame {
		b := &states[firstFrameDecl]
		indent := indentOf(src, b.start)
		line := fmt.Sprintf("%sconst frame = useCurrentFrame();\n%sconst %s = %s;\n",
			indent, indent, b.name, b.frameExpr)
		for j := range edits {
			if edits[j].start == b.start && edits[j].end == b.end {
				edits[j].text = line
				break
			}
		}
	}

	edits = append(edits, leftoverSetterEdits(src, states, removed)...)
	edits = append(edits, tidyReactImport(m, src, states, effects, removed)...)
	if needFrame {
		edits = append(edits, ensureRemotionImport(m, src, "useCurrentFrame")...)
	}

	return applyEdits(src, edits)
}

// leftoverSetterEdits removes setter calls that survive outside the
// spans already being deleted. Plain call statements are dropped whole;
// calls embedded in JSX expressions are neutralized in place so the
// surrounding markup keeps its shape.
func leftoverSetterEdits(src string, states []stateBinding, removed [][2]int) []edit {
	var edits []edit
	for _, b := range states {
		if b.setter == "" {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(b.setter) + `[ \t]*\(`)
		for _, loc := range re.FindAllStringIndex(src, -1) {
			if loc[0] > 0 && isIdentPart(src[loc[0]-1]) {
				continue
			}
			if insideAny(removed, loc[0]) {
				continue
			}
			close := matchDelim(src, loc[1]-1, '(', ')')
			if close < 0 {
				continue
			}
			start, end := statementSpan(src, loc[0], close)
			if jsxInStatementRe.MatchString(src[start:loc[0]]) {
				edits = append(edits, edit{start: loc[0], end: close, text: "undefined"})
			} else {
				edits = append(edits, edit{start: start, end: end})
			}
			removed = append(removed, [2]int{start, end})
		}
	}
	return edits
}

func insideAny(spans [][2]int, i int) bool {
	for _, s := range spans {
		if i >= s[0] && i < s[1] {
			return true
		}
	}
	return false
}

// tidyReactImport drops useState and useEffect from the react import
// clause once nothing outside the removed spans still uses them. A
// clause left empty takes the whole import statement with it unless a
// default import remains.
func tidyReactImport(m *sourceModule, src string, states []stateBinding, effects []effectBinding, removed [][2]int) []edit {
	decl := m.findImport("react")
	if decl == nil {
		return nil
	}
	drop := map[string]bool{}
	if len(states) > 0 && !hookStillUsed(src, "useState", removed, decl) {
		drop["useState"] = true
	}
	if len(effects) > 0 && !hookStillUsed(src, "useEffect", removed, decl) {
		drop["useEffect"] = true
	}
	if len(drop) == 0 {
		return nil
	}

	def, named, ok := splitImportClause(decl.clause)
	if !ok {
		return nil
	}
	kept := named[:0]
	for _, n := range named {
		base := strings.TrimSpace(strings.SplitN(n, " as ", 2)[0])
		if !drop[base] {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(named) {
		return nil
	}

	var text string
	switch {
	case len(kept) > 0 && def != "":
		text = fmt.Sprintf("import %s, { %s } from 'react';\n", def, strings.Join(kept, ", "))
	case len(kept) > 0:
		text = fmt.Sprintf("import { %s } from 'react';\n", strings.Join(kept, ", "))
	case def != "":
		text = fmt.Sprintf("import %s from 'react';\n", def)
	default:
		text = ""
	}
	return []edit{{start: decl.start, end: decl.end, text: text}}
}

func hookStillUsed(src, name string, removed [][2]int, decl *importDecl) bool {
	for i := 0; i+len(name) <= len(src); i++ {
		if !identAt(src, i, name) {
			continue
		}
		if i >= decl.start && i < decl.end {
			continue
		}
		if insideAny(removed, i) {
			continue
		}
		return true
	}
	return false
}

// splitImportClause separates "React, { a, b as c }" into the default
// import and the named list. Namespace imports report !ok and are left
// untouched.
func splitImportClause(clause string) (def string, named []string, ok bool) {
	clause = strings.TrimSpace(clause)
	if strings.Contains(clause, "*") {
		return "", nil, false
	}
	open := strings.IndexByte(clause, '{')
	if open < 0 {
		return clause, nil, true
	}
	close := strings.LastIndexByte(clause, '}')
	if close < open {
		return "", nil, false
	}
	def = strings.TrimSuffix(strings.TrimSpace(clause[:open]), ",")
	def = strings.TrimSpace(def)
	for _, n := range strings.Split(clause[open+1:close], ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			named = append(named, n)
		}
	}
	return def, named, true
}

// ensureRemotionImport merges a named import into an existing remotion
// import or prepends a fresh one after the last import statement.
func ensureRemotionImport(m *sourceModule, src string, name string) []edit {
	decl := m.findImport("remotion")
	if decl != nil {
		def, named, ok := splitImportClause(decl.clause)
		if !ok {
			return nil
		}
		for _, n := range named {
			if strings.TrimSpace(strings.SplitN(n, " as ", 2)[0]) == name {
				return nil
			}
		}
		named = append(named, name)
		var text string
		if def != "" {
			text = fmt.Sprintf("import %s, { %s } from 'remotion';\n", def, strings.Join(named, ", "))
		} else {
			text = fmt.Sprintf("import { %s } from 'remotion';\n", strings.Join(named, ", "))
		}
		return []edit{{start: decl.start, end: decl.end, text: text}}
	}
	at := 0
	for _, imp := range m.imports {
		if imp.end > at {
			at = imp.end
		}
	}
	return []edit{{start: at, end: at, text: fmt.Sprintf("import { %s } from 'remotion';\n", name)}}
}
