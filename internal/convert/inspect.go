package convert

import "regexp"

var defaultExportRe = regexp.MustCompile(`\bexport[ \t]+default\b`)

// HasDefaultExport reports whether source carries a default export
// outside of string literals and comments.
func HasDefaultExport(source string) bool {
	fenced, _, err := guardSource(source)
	if err != nil {
		return false
	}
	return defaultExportRe.MatchString(fenced)
}

// DelimiterBalance returns the net parenthesis and brace balance of
// source with literals fenced out. Zero for both means balanced;
// negative means surplus closers.
func DelimiterBalance(source string) (parens, braces int, err error) {
	fenced, _, err := guardSource(source)
	if err != nil {
		return 0, 0, err
	}
	return countRuneBalance(fenced, '(', ')'), countRuneBalance(fenced, '{', '}'), nil
}

// RepairExports reparses source and guarantees exactly one default
// export without touching anything else: a missing default is appended
// against the module's root component, duplicates collapse to the
// first. The boolean reports whether the source changed.
func RepairExports(source string) (string, bool, error) {
	m, err := parseModule(source, DefaultOptions())
	if err != nil {
		return "", false, err
	}
	res := &Result{}
	src, _ := ensureDefaultExport(m, res)
	out := m.fences.restore(src)
	return out, out != source, nil
}
