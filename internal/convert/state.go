package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type stateRole int

const (
	// roleStatic is never updated; its initial value is kept as a
	// constant.
	roleStatic stateRole = iota
	// roleCounter advances by a fixed step on a timer.
	roleCounter
	// roleToggle flips a boolean on a timer.
	roleToggle
	// roleSelection cycles an index modulo a collection length.
	roleSelection
	// rolePositional follows the pointer; frozen at its initial value.
	rolePositional
	// roleCollection is seeded once on mount; replaced by the seed.
	roleCollection
	// roleUnclassifiable is updated in ways with no frame equivalent;
	// frozen at its initial value with a conversion note.
	roleUnclassifiable
)

func (r stateRole) String() string {
	switch r {
	case roleStatic:
		return "static"
	case roleCounter:
		return "counter"
	case roleToggle:
		return "toggle"
	case roleSelection:
		return "selection"
	case rolePositional:
		return "positional"
	case roleCollection:
		return "collection"
	default:
		return "unclassifiable"
	}
}

type updateContext int

const (
	updateTimer updateContext = iota
	updateMount
	updateTracked
	updateHandler
	updatePointerHandler
	updateOther
)

// stateBinding is one useState declaration plus everything role
// inference decided about it. frameExpr is the replacement initializer
// emitted by the rewrite pass.
type stateBinding struct {
	name      string
	setter    string
	init      string
	start     int
	end       int
	role      stateRole
	frameExpr string
	frames    int
	contexts  []updateContext
}

var (
	useStateRe = regexp.MustCompile(`(?m)^[ \t]*(const|let|var)[ \t]+\[\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*(?:,\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*)?\]\s*=\s*(?:React\.)?useState(?:<[^>\n]*>)?\s*\(`)

	arrowUpdaterRe    = regexp.MustCompile(`^\(?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\)?\s*=>\s*(.+)$`)
	cycleBodyRe       = regexp.MustCompile(`^\(\s*([A-Za-z_$][A-Za-z0-9_$.]*)\s*\+\s*1\s*\)\s*%\s*(.+)$`)
	stepBodyRe        = regexp.MustCompile(`^([A-Za-z_$][A-Za-z0-9_$.]*)\s*([+-])\s*(.+)$`)
	negateBodyRe      = regexp.MustCompile(`^!\s*([A-Za-z_$][A-Za-z0-9_$.]*)$`)
	collectionSeedRe  = regexp.MustCompile(`^(\[|Array\.from\s*\(|new\s+Array\s*\()`)
	numericLiteralRe  = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)
	trailingSemiSpace = regexp.MustCompile(`[;\s]+$`)
)

// findStates locates every useState declaration in the fenced source.
func findStates(m *sourceModule) []stateBinding {
	src := m.fenced
	var out []stateBinding
	for _, loc := range useStateRe.FindAllStringSubmatchIndex(src, -1) {
		b := stateBinding{
			name:  src[loc[4]:loc[5]],
			start: loc[0],
		}
		if loc[6] >= 0 {
			b.setter = src[loc[6]:loc[7]]
		}
		open := loc[1] - 1
		close := matchDelim(src, open, '(', ')')
		if close < 0 {
			continue
		}
		b.init = strings.TrimSpace(src[open+1 : close-1])
		_, b.end = statementSpan(src, loc[0], close)
		out = append(out, b)
	}
	return out
}

func spanContains(start, end, i int) bool { return i >= start && i < end }

// inferRoles classifies every binding and precomputes its replacement
// initializer. Timer-driven bindings become frame arithmetic; the rest
// freeze to a deterministic snapshot.
func inferRoles(m *sourceModule, states []stateBinding, effects []effectBinding, attrs []attrSpan, fns []handlerFn) {
	src := m.fenced
	for i := range states {
		b := &states[i]
		sites := setterSites(src, b)
		b.contexts = classifySites(sites, effects, attrs, fns)
		assignRole(m.opts, b, effects)
	}
}

// setterSites returns the offsets of calls to the binding's setter,
// excluding its own declaration.
func setterSites(src string, b *stateBinding) []int {
	if b.setter == "" {
		return nil
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(b.setter) + `[ \t]*\(`)
	var out []int
	for _, loc := range re.FindAllStringIndex(src, -1) {
		if loc[0] > 0 && isIdentPart(src[loc[0]-1]) {
			continue
		}
		if spanContains(b.start, b.end, loc[0]) {
			continue
		}
		out = append(out, loc[0])
	}
	return out
}

func classifySites(sites []int, effects []effectBinding, attrs []attrSpan, fns []handlerFn) []updateContext {
	out := make([]updateContext, 0, len(sites))
	for _, site := range sites {
		ctx := updateOther
		placed := false
		for _, e := range effects {
			if !spanContains(e.start, e.end, site) {
				continue
			}
			switch e.trigger {
			case triggerInterval:
				ctx = updateTimer
			case triggerMount:
				ctx = updateMount
			default:
				ctx = updateTracked
			}
			placed = true
			break
		}
		if !placed {
			// Inline handlers live in the attribute value itself.
			for _, a := range attrs {
				if spanContains(a.start, a.end, site) {
					if a.pointer {
						ctx = updatePointerHandler
					} else {
						ctx = updateHandler
					}
					placed = true
					break
				}
			}
		}
		if !placed {
			for _, fn := range fns {
				if spanContains(fn.start, fn.end, site) {
					if fn.pointer {
						ctx = updatePointerHandler
					} else {
						ctx = updateHandler
					}
					break
				}
			}
		}
		out = append(out, ctx)
	}
	return out
}

func hasContext(ctxs []updateContext, want updateContext) bool {
	for _, c := range ctxs {
		if c == want {
			return true
		}
	}
	return false
}

func onlyContexts(ctxs []updateContext, allowed ...updateContext) bool {
	if len(ctxs) == 0 {
		return false
	}
	for _, c := range ctxs {
		ok := false
		for _, a := range allowed {
			if c == a {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func assignRole(opts Options, b *stateBinding, effects []effectBinding) {
	init := trailingSemiSpace.ReplaceAllString(b.init, "")
	if init == "" {
		init = "undefined"
	}
	snapshot := func(role stateRole) {
		b.role = role
		b.frameExpr = init
	}

	if len(b.contexts) == 0 {
		snapshot(roleStatic)
		return
	}

	if hasContext(b.contexts, updateTimer) {
		call, frames := timerUpdater(opts, b.setter, effects)
		if call != nil {
			b.frames = frames
			if expr, role := frameFormula(call.arg, init, frames); role != roleUnclassifiable {
				b.role = role
				b.frameExpr = expr
				return
			}
		}
		snapshot(roleUnclassifiable)
		return
	}

	if onlyContexts(b.contexts, updateMount, updateTracked) {
		if seed := mountSeed(b.setter, effects); seed != "" && (collectionSeedRe.MatchString(seed) || collectionSeedRe.MatchString(init)) {
			b.role = roleCollection
			b.frameExpr = seed
			return
		}
		if collectionSeedRe.MatchString(init) {
			snapshot(roleCollection)
			return
		}
		snapshot(roleUnclassifiable)
		return
	}

	if onlyContexts(b.contexts, updatePointerHandler) {
		snapshot(rolePositional)
		return
	}
	if onlyContexts(b.contexts, updateHandler, updatePointerHandler) {
		// Click-style handlers have no timeline meaning; the initial
		// value is the deterministic snapshot.
		snapshot(rolePositional)
		return
	}
	snapshot(roleUnclassifiable)
}

// timerUpdater finds the interval effect calling this setter and the
// frame count its delay maps to.
func timerUpdater(opts Options, setter string, effects []effectBinding) (*setterCall, int) {
	for i := range effects {
		e := &effects[i]
		if e.trigger != triggerInterval {
			continue
		}
		for j := range e.setters {
			if e.setters[j].name == setter {
				ms := e.intervalMS
				if !e.intervalLiteral {
					ms = float64(opts.DefaultIntervalMS)
				}
				return &e.setters[j], opts.intervalToFrames(ms)
			}
		}
	}
	return nil, 0
}

func mountSeed(setter string, effects []effectBinding) string {
	for _, e := range effects {
		if e.trigger != triggerMount {
			continue
		}
		for _, s := range e.setters {
			if s.name == setter {
				return s.arg
			}
		}
	}
	return ""
}

// frameFormula translates one timer updater into frame arithmetic.
// Recognized shapes: functional increment or decrement by a step,
// boolean negation, and (x + 1) % length cycling. Anything else is
// unclassifiable.
func frameFormula(arg, init string, frames int) (string, stateRole) {
	floor := fmt.Sprintf("Math.floor(frame / %d)", frames)
	body := strings.TrimSpace(arg)
	param := ""
	if mArrow := arrowUpdaterRe.FindStringSubmatch(body); mArrow != nil {
		param = mArrow[1]
		body = strings.TrimSpace(mArrow[2])
	}
	body = trailingSemiSpace.ReplaceAllString(body, "")

	if mNeg := negateBodyRe.FindStringSubmatch(body); mNeg != nil && (param == "" || mNeg[1] == param) {
		if init == "true" {
			return floor + " % 2 === 0", roleToggle
		}
		return floor + " % 2 === 1", roleToggle
	}
	if mCycle := cycleBodyRe.FindStringSubmatch(body); mCycle != nil && (param == "" || mCycle[1] == param) {
		mod := strings.TrimSpace(mCycle[2])
		return floor + " % " + mod, roleSelection
	}
	if mStep := stepBodyRe.FindStringSubmatch(body); mStep != nil && (param == "" || mStep[1] == param) {
		op := mStep[2]
		step := strings.TrimSpace(mStep[3])
		expr := floor
		if numericLiteralRe.MatchString(step) {
			if k, err := strconv.ParseFloat(step, 64); err == nil && k != 1 {
				expr = floor + " * " + step
			}
		} else {
			expr = floor + " * (" + step + ")"
		}
		switch {
		case init == "0" && op == "+":
			return expr, roleCounter
		case numericLiteralRe.MatchString(init):
			return init + " " + op + " " + expr, roleCounter
		default:
			return "(" + init + ") " + op + " " + expr, roleCounter
		}
	}
	return "", roleUnclassifiable
}
