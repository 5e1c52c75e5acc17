package convert

// NoteKind classifies the non-fatal conditions a conversion reports.
type NoteKind int

const (
	// NoteUnclassifiableBinding marks a state binding that fell back to
	// a static snapshot of its initial value.
	NoteUnclassifiableBinding NoteKind = iota
	// NoteStructuralRepair marks the brace/paren safety net firing.
	NoteStructuralRepair
	// NoteDependencyAdded marks a manifest entry appended by the
	// dependency resolver.
	NoteDependencyAdded
)

func (k NoteKind) String() string {
	switch k {
	case NoteUnclassifiableBinding:
		return "unclassifiable-binding"
	case NoteStructuralRepair:
		return "structural-repair"
	case NoteDependencyAdded:
		return "dependency-added"
	default:
		return "unknown"
	}
}

// Note is a non-fatal observation recorded while converting. The core
// never logs; callers decide what to surface.
type Note struct {
	Kind    NoteKind
	Message string
}

// Result is the transformed module handed back to callers.
type Result struct {
	// Code is the converted source, guaranteed to carry exactly one
	// default-exported component.
	Code string
	// ComponentName is the identifier the default export resolves to.
	ComponentName string
	// Pattern is the classification the pipeline acted on.
	Pattern Pattern
	// RetainedImports lists the module specifiers still imported by
	// the converted source.
	RetainedImports []string
	// AddedDependencies maps package names the dependency resolver
	// appended to their pinned versions.
	AddedDependencies map[string]string
	// KeyframeRepairs counts interpolate call sites whose input range
	// needed correction.
	KeyframeRepairs int
	// Notes carries the non-fatal conditions observed in pipeline
	// order.
	Notes []Note
}

func (r *Result) note(kind NoteKind, msg string) {
	r.Notes = append(r.Notes, Note{Kind: kind, Message: msg})
}
