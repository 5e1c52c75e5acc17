package convert

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	exportDefaultIdentRe = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+default[ \t]+([A-Za-z_$][A-Za-z0-9_$]*)[ \t]*;?[ \t]*\n?`)
	exportDefaultFuncRe  = regexp.MustCompile(`export[ \t]+default[ \t]+(?:async[ \t]+)?function[ \t]+([A-Za-z_$][A-Za-z0-9_$]*)`)
	exportDefaultAnonRe  = regexp.MustCompile(`export[ \t]+default[ \t]+((?:async[ \t]+)?function[ \t]*\(|(?:async[ \t]+)?\(|<[A-Za-z>])`)
	exportBracesRe       = regexp.MustCompile(`(?m)^[ \t]*export[ \t]*\{([^}]*)\}[ \t]*(?:from[ \t]*['"][^'"]*['"])?[ \t]*;?[ \t]*\n?`)
	exportInlineRe       = regexp.MustCompile(`(?m)^([ \t]*)export[ \t]+(default[ \t]+)?(const|let|var|async[ \t]+function|function|class)\b`)
	exportAsDefaultRe    = regexp.MustCompile(`\b([A-Za-z_$][A-Za-z0-9_$]*)[ \t]+as[ \t]+default\b`)
)

var conventionalRoots = []string{"App", "Main", "Root", "Scene", "Video", "Index"}

var fcAnnotationRe = regexp.MustCompile(`\b(React\.)?(FC|FunctionComponent)\b`)

// resolveRoot picks the component the default export should point at
// when the module never said: an FC-annotated declaration first, then
// the conventional root names, then the first component in the file.
func resolveRoot(m *sourceModule) string {
	for _, d := range m.decls {
		if d.annotation != "" && fcAnnotationRe.MatchString(d.annotation) {
			return d.name
		}
	}
	for _, name := range conventionalRoots {
		if m.declared(name) {
			return name
		}
	}
	if len(m.decls) > 0 {
		return m.decls[0].name
	}
	return ""
}

// normalizeExports rewrites a single-component module to exactly one
// default export naming the root. Inline export modifiers are stripped,
// anonymous defaults get the configured root name, and the default
// export statement lands at the end of the file.
func normalizeExports(m *sourceModule, res *Result) (string, string) {
	src := m.fenced
	rootName := m.opts.RootName
	defaultName := ""

	// A default attached to a function declaration keeps the
	// declaration; the modifier is stripped with the other inline
	// exports below.
	if loc := exportDefaultFuncRe.FindStringSubmatchIndex(src); loc != nil {
		defaultName = src[loc[2]:loc[3]]
	}
	if loc := exportDefaultIdentRe.FindStringSubmatchIndex(src); loc != nil {
		name := src[loc[2]:loc[3]]
		if name != "function" && name != "async" && name != "class" {
			if defaultName == "" {
				defaultName = name
			}
			src = src[:loc[0]] + src[loc[1]:]
		}
	}

	// Anonymous default exports are named so the trailing export can
	// reference them.
	if loc := exportDefaultAnonRe.FindStringSubmatchIndex(src); loc != nil {
		head := src[loc[2]:loc[3]]
		name := rootName
		if m.declared(name) {
			name += "Component"
		}
		if strings.Contains(head, "function") {
			src = src[:loc[0]] + strings.Replace(head, "function", "function "+name, 1) + src[loc[3]:]
		} else {
			src = src[:loc[0]] + "const " + name + " = " + head + src[loc[3]:]
		}
		defaultName = name
		res.note(NoteStructuralRepair, fmt.Sprintf("named anonymous default export %s", name))
	}

	// Named re-exports: remember an "X as default" alias, then drop the
	// statement. Simple modules re-export nothing else worth keeping.
	for {
		loc := exportBracesRe.FindStringSubmatchIndex(src)
		if loc == nil {
			break
		}
		if defaultName == "" {
			if alias := exportAsDefaultRe.FindStringSubmatch(src[loc[2]:loc[3]]); alias != nil {
				defaultName = alias[1]
			}
		}
		src = src[:loc[0]] + src[loc[1]:]
	}

	src = exportInlineRe.ReplaceAllString(src, "$1$3")

	m.rescan(src)
	root := defaultName
	if root == "" || (!m.declared(root) && root != rootName && !strings.HasPrefix(root, rootName)) {
		root = resolveRoot(m)
	}
	if root == "" {
		root = rootName
	}

	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	src += "\nexport default " + root + ";\n"
	return src, root
}

// ensureDefaultExport is the light-touch variant for complete modules:
// existing exports stay, a missing default is appended, and duplicate
// defaults collapse to the first.
func ensureDefaultExport(m *sourceModule, res *Result) (string, string) {
	src := m.fenced
	locs := regexp.MustCompile(`\bexport[ \t]+default\b`).FindAllStringIndex(src, -1)

	switch len(locs) {
	case 0:
		root := resolveRoot(m)
		if root == "" {
			root = m.opts.RootName
		}
		if !strings.HasSuffix(src, "\n") {
			src += "\n"
		}
		src += "\nexport default " + root + ";\n"
		res.note(NoteStructuralRepair, fmt.Sprintf("added missing default export for %s", root))
		return src, root
	case 1:
		return src, defaultExportName(src, m)
	}

	// Keep the first default, drop the rest statement-wise.
	var edits []edit
	for _, loc := range locs[1:] {
		start := lineStart(src, loc[0])
		if stmt := exportDefaultIdentRe.FindStringIndex(src[start:]); stmt != nil && start+stmt[0] == start {
			edits = append(edits, edit{start: start + stmt[0], end: start + stmt[1]})
		} else {
			// Default attached to a declaration: strip the modifier,
			// keep the declaration.
			edits = append(edits, edit{start: loc[0], end: loc[1]})
		}
	}
	res.note(NoteStructuralRepair, fmt.Sprintf("collapsed %d default exports to one", len(locs)))
	src = applyEdits(src, edits)
	return src, defaultExportName(src, m)
}

func defaultExportName(src string, m *sourceModule) string {
	if loc := exportDefaultFuncRe.FindStringSubmatch(src); loc != nil {
		return loc[1]
	}
	if loc := exportDefaultIdentRe.FindStringSubmatch(src); loc != nil {
		return loc[1]
	}
	if root := resolveRoot(m); root != "" {
		return root
	}
	return m.opts.RootName
}

var leadingJSXRe = regexp.MustCompile(`(?m)^[ \t]*<[A-Za-z>]`)

// wrapFragment turns loose JSX into a named component module. Imports
// stay on top; the remainder becomes the component body. Content that
// opens with markup wraps as a fragment expression, otherwise the
// statements run first and the first markup line becomes the return.
func wrapFragment(m *sourceModule, res *Result) (string, string) {
	src := m.fenced
	name := m.opts.RootName
	cut := 0
	for _, imp := range m.imports {
		if imp.end > cut {
			cut = imp.end
		}
	}
	head, body := src[:cut], strings.TrimRight(src[cut:], " \t\n")

	var b strings.Builder
	b.WriteString(head)
	if head != "" && !strings.HasSuffix(head, "\n") {
		b.WriteByte('\n')
	}
	trimmed := strings.TrimSpace(body)
	switch {
	case trimmed == "":
		fmt.Fprintf(&b, "const %s = () => null;\n", name)
	case strings.HasPrefix(trimmed, "<"):
		fmt.Fprintf(&b, "const %s = () => (\n  <>\n%s\n  </>\n);\n", name, body)
	default:
		if loc := leadingJSXRe.FindStringIndex(body); loc != nil {
			stmts := strings.TrimRight(body[:loc[0]], " \t\n")
			markup := body[loc[0]:]
			fmt.Fprintf(&b, "const %s = () => {\n%s\n  return (\n    <>\n%s\n    </>\n  );\n};\n", name, stmts, markup)
		} else {
			fmt.Fprintf(&b, "const %s = () => {\n%s\n  return null;\n};\n", name, body)
		}
	}
	fmt.Fprintf(&b, "\nexport default %s;\n", name)
	res.note(NoteStructuralRepair, fmt.Sprintf("wrapped loose content in component %s", name))
	return b.String(), name
}
