// Package convert rewrites interactive React component source into
// deterministic, frame-pure components suitable for a declarative
// timeline. State hooks become frame arithmetic, effects and event
// wiring disappear, structure and exports are repaired, and the
// dependency footprint of the surviving imports is resolved.
package convert

// Convert transforms one module of component source using the default
// options.
func Convert(source string) (*Result, error) {
	return ConvertWithOptions(source, Options{})
}

// ConvertWithOptions transforms one module of component source. The
// returned error is a *ConversionError for inputs that cannot be
// scanned at all; everything else is repaired in place and reported
// through the result's notes.
func ConvertWithOptions(source string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	m, err := parseModule(source, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	// Close truncated delimiters first so every later pass scans
	// balanced text.
	m.rescan(repairDelimiters(m.fenced, res))

	res.Pattern = classify(m)

	var root string
	switch res.Pattern {
	case PatternCompleteMultiComponentModule:
		// Large finished modules keep their internals; only the
		// export surface is normalized. A wrapper element here is
		// the module's own registration root, not paste noise.
		src, name := ensureDefaultExport(m, res)
		m.rescan(src)
		root = name
	case PatternSimpleFragment:
		m.rescan(eliminateHooks(m, res))
		m.rescan(unwrapWrapper(m, res))
		src, name := wrapFragment(m, res)
		m.rescan(src)
		root = name
	default:
		m.rescan(eliminateHooks(m, res))
		m.rescan(unwrapWrapper(m, res))
		src, name := normalizeExports(m, res)
		m.rescan(src)
		root = name
	}

	m.rescan(repairInterpolationCalls(m.fenced, res))

	res.ComponentName = root
	res.Code = m.fences.restore(m.fenced)
	resolveDependencies(m, opts.Manifest, res)
	return res, nil
}
