package convert

import "regexp"

// Pattern is the recognized shape of an input module. It picks the
// intervention level: fragments get wrapped, simple components get the
// full rewrite, complete modules get export normalization only.
type Pattern int

const (
	PatternSimpleFragment Pattern = iota
	PatternSimpleFunctionComponent
	PatternArrowConstComponent
	PatternCompleteMultiComponentModule
	PatternContentHeavyShowcase
)

func (p Pattern) String() string {
	switch p {
	case PatternSimpleFragment:
		return "simple-fragment"
	case PatternSimpleFunctionComponent:
		return "simple-function-component"
	case PatternArrowConstComponent:
		return "arrow-const-component"
	case PatternCompleteMultiComponentModule:
		return "complete-multi-component-module"
	case PatternContentHeavyShowcase:
		return "content-heavy-showcase"
	default:
		return "unknown"
	}
}

// classify orders its checks most-specific first. The complete-module
// check wins over showcase because export normalization is the safer
// intervention on large inputs; both win over the per-declaration
// shapes.
func classify(m *sourceModule) Pattern {
	weighted := len(m.raw) + m.importCount()*m.opts.ImportLengthWeight
	if len(m.decls) >= 2 && weighted > m.opts.CompleteLengthThreshold {
		return PatternCompleteMultiComponentModule
	}
	if len(m.raw) >= m.opts.ShowcaseLengthThreshold && m.jsxTagCount() >= m.opts.ShowcaseTagThreshold {
		return PatternContentHeavyShowcase
	}
	if len(m.decls) == 0 {
		// An anonymous default export is still a component module;
		// export normalization names it. Only exportless loose
		// content gets wrapped.
		if anonDefaultFuncRe.MatchString(m.fenced) {
			return PatternSimpleFunctionComponent
		}
		if anonDefaultRe.MatchString(m.fenced) {
			return PatternArrowConstComponent
		}
		return PatternSimpleFragment
	}
	root := m.decls[0]
	if root.kind == declFunction {
		return PatternSimpleFunctionComponent
	}
	return PatternArrowConstComponent
}

var (
	anonDefaultFuncRe = regexp.MustCompile(`\bexport[ \t]+default[ \t]+(?:async[ \t]+)?function\b`)
	anonDefaultRe     = regexp.MustCompile(`\bexport[ \t]+default\b`)
)
