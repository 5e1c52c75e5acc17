package convert

// Manifest is the dependency view of the hosting project's package
// manifest. The resolver only ever appends; implementations decide how
// additions are persisted.
type Manifest interface {
	HasDependency(name string) bool
	AddDependency(name, version string)
}

// Options tune a single conversion. Zero fields fall back to the
// defaults below, so callers may set only what they care about.
type Options struct {
	// FPS of the hosting timeline; timer intervals are converted to
	// frame counts against it.
	FPS int
	// DefaultIntervalMS substitutes for timer intervals that are not
	// numeric literals in the source.
	DefaultIntervalMS int
	// RootName is the identifier used for generated container
	// components and as the last-resort root component name.
	RootName string
	// WrapperElement is the authoring-tool composition wrapper to
	// unwrap (tags removed, children promoted).
	WrapperElement string
	// CompleteLengthThreshold is the weighted source length above
	// which a module is treated as a complete multi-component module.
	// Import count feeds the weighting, so modules near the boundary
	// can flip with minor import changes; that is a tuning knob, not a
	// semantic rule.
	CompleteLengthThreshold int
	// ImportLengthWeight is the per-import contribution to the
	// weighted length.
	ImportLengthWeight int
	// ShowcaseTagThreshold is the JSX tag count above which a long
	// single-component module is classified content-heavy.
	ShowcaseTagThreshold int
	// ShowcaseLengthThreshold is the minimum raw length for the
	// content-heavy classification.
	ShowcaseLengthThreshold int
	// Manifest receives dependency appends. When nil, resolution runs
	// against an in-memory manifest seeded with the host project
	// baseline (react, react-dom, remotion) and additions are only
	// reported on the Result.
	Manifest Manifest
}

// DefaultOptions returns the tuning used by the studio service.
func DefaultOptions() Options {
	return Options{
		FPS:                     30,
		DefaultIntervalMS:       1000,
		RootName:                "Scene",
		WrapperElement:          "Composition",
		CompleteLengthThreshold: 5200,
		ImportLengthWeight:      160,
		ShowcaseTagThreshold:    40,
		ShowcaseLengthThreshold: 2600,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.FPS <= 0 {
		o.FPS = def.FPS
	}
	if o.DefaultIntervalMS <= 0 {
		o.DefaultIntervalMS = def.DefaultIntervalMS
	}
	if o.RootName == "" {
		o.RootName = def.RootName
	}
	if o.WrapperElement == "" {
		o.WrapperElement = def.WrapperElement
	}
	if o.CompleteLengthThreshold <= 0 {
		o.CompleteLengthThreshold = def.CompleteLengthThreshold
	}
	if o.ImportLengthWeight <= 0 {
		o.ImportLengthWeight = def.ImportLengthWeight
	}
	if o.ShowcaseTagThreshold <= 0 {
		o.ShowcaseTagThreshold = def.ShowcaseTagThreshold
	}
	if o.ShowcaseLengthThreshold <= 0 {
		o.ShowcaseLengthThreshold = def.ShowcaseLengthThreshold
	}
	return o
}

// intervalToFrames converts a timer interval in milliseconds to a
// whole frame count at the configured FPS, never below one frame.
func (o Options) intervalToFrames(ms float64) int {
	if ms <= 0 {
		ms = float64(o.DefaultIntervalMS)
	}
	frames := int(ms/1000.0*float64(o.FPS) + 0.5)
	if frames < 1 {
		frames = 1
	}
	return frames
}
