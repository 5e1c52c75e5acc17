package convert

import (
	"regexp"
	"strconv"
	"strings"
)

type effectTrigger int

const (
	// triggerMount runs once: empty dependency array.
	triggerMount effectTrigger = iota
	// triggerInterval drives a timer via setInterval.
	triggerInterval
	// triggerTracked re-runs on tracked values (or every render when
	// no dependency array is given).
	triggerTracked
)

func (t effectTrigger) String() string {
	switch t {
	case triggerMount:
		return "mount"
	case triggerInterval:
		return "interval"
	default:
		return "tracked"
	}
}

// setterCall is one state-setter invocation with its raw (fenced)
// argument text.
type setterCall struct {
	name string
	arg  string
}

// effectBinding is one useEffect call site. The span covers the whole
// statement so removal takes the line with it.
type effectBinding struct {
	start, end      int
	trigger         effectTrigger
	deps            []string
	intervalMS      float64
	intervalLiteral bool
	body            string
	setters         []setterCall
}

var (
	useEffectRe   = regexp.MustCompile(`\buseEffect[ \t]*\(`)
	setIntervalRe = regexp.MustCompile(`\bset(?:Interval|Timeout)[ \t]*\(`)
	setterCallRe  = regexp.MustCompile(`\b(set[A-Z][A-Za-z0-9_$]*)[ \t]*\(`)
)

// findEffects locates every useEffect call in the fenced source and
// classifies its trigger. A setInterval or setTimeout in the body wins
// over the dependency array, since the dominant timer idiom is an
// interval inside a mount effect.
func findEffects(m *sourceModule) []effectBinding {
	src := m.fenced
	var out []effectBinding
	for _, loc := range useEffectRe.FindAllStringIndex(src, -1) {
		if loc[0] > 0 && isIdentPart(src[loc[0]-1]) {
			continue
		}
		open := loc[1] - 1
		close := matchDelim(src, open, '(', ')')
		if close < 0 {
			continue
		}
		start, end := statementSpan(src, loc[0], close)
		inner := src[open+1 : close-1]
		args := splitTopLevelArgs(inner)
		b := effectBinding{start: start, end: end}
		if len(args) > 0 {
			b.body = args[0]
		}
		if len(args) >= 2 {
			b.deps = parseDepsArray(args[len(args)-1])
		}
		b.setters = findSetterCalls(b.body)
		switch {
		case setIntervalRe.MatchString(b.body):
			b.trigger = triggerInterval
			b.intervalMS, b.intervalLiteral = extractIntervalMS(b.body)
			if timer := timerCallbackBody(b.body); timer != "" {
				b.setters = findSetterCalls(timer)
			}
		case len(args) >= 2 && len(b.deps) == 0:
			b.trigger = triggerMount
		default:
			b.trigger = triggerTracked
		}
		out = append(out, b)
	}
	return out
}

// splitTopLevelArgs splits fenced argument text on commas that sit at
// bracket depth zero.
func splitTopLevelArgs(s string) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	tail := strings.TrimSpace(s[last:])
	if tail != "" || len(out) > 0 {
		out = append(out, tail)
	}
	return out
}

func parseDepsArray(s string) []string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []string{}
	}
	parts := splitTopLevelArgs(inner)
	deps := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			deps = append(deps, p)
		}
	}
	return deps
}

func findSetterCalls(body string) []setterCall {
	var out []setterCall
	for _, loc := range setterCallRe.FindAllStringSubmatchIndex(body, -1) {
		if loc[0] > 0 && isIdentPart(body[loc[0]-1]) {
			continue
		}
		open := loc[1] - 1
		close := matchDelim(body, open, '(', ')')
		if close < 0 {
			continue
		}
		out = append(out, setterCall{
			name: body[loc[2]:loc[3]],
			arg:  strings.TrimSpace(body[open+1 : close-1]),
		})
	}
	return out
}

// extractIntervalMS pulls the delay argument off the first setInterval
// or setTimeout call. Non-literal delays report false and fall back to
// the configured default.
func extractIntervalMS(body string) (float64, bool) {
	loc := setIntervalRe.FindStringIndex(body)
	if loc == nil {
		return 0, false
	}
	open := loc[1] - 1
	close := matchDelim(body, open, '(', ')')
	if close < 0 {
		return 0, false
	}
	args := splitTopLevelArgs(body[open+1 : close-1])
	if len(args) < 2 {
		return 0, false
	}
	ms, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil || ms < 0 {
		return 0, false
	}
	return ms, true
}

// timerCallbackBody returns the first argument of the setInterval (or
// setTimeout) call so role inference reads the ticking updater, not the
// surrounding effect.
func timerCallbackBody(body string) string {
	loc := setIntervalRe.FindStringIndex(body)
	if loc == nil {
		return ""
	}
	open := loc[1] - 1
	close := matchDelim(body, open, '(', ')')
	if close < 0 {
		return ""
	}
	args := splitTopLevelArgs(body[open+1 : close-1])
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
