package convert

import (
	"regexp"
	"strconv"
	"strings"

	"framewright/internal/keyframes"
)

var interpolateCallRe = regexp.MustCompile(`\binterpolate[ \t]*\(`)

// repairInterpolationCalls rewrites the input range of every
// interpolate call whose numeric literals violate the strictly
// increasing requirement. Ranges containing non-literal entries are
// left for runtime validation. Counts one repair per changed call.
func repairInterpolationCalls(src string, res *Result) string {
	var edits []edit
	for _, loc := range interpolateCallRe.FindAllStringIndex(src, -1) {
		if loc[0] > 0 && isIdentPart(src[loc[0]-1]) {
			continue
		}
		open := loc[1] - 1
		close := matchDelim(src, open, '(', ')')
		if close < 0 {
			continue
		}
		argStart, argEnd := nthArgSpan(src, open+1, close-1, 1)
		if argStart < 0 {
			continue
		}
		repaired, ok := repairRangeLiteral(src[argStart:argEnd])
		if !ok {
			continue
		}
		edits = append(edits, edit{start: argStart, end: argEnd, text: repaired})
		res.KeyframeRepairs++
	}
	return applyEdits(src, edits)
}

// nthArgSpan returns the trimmed span of the n-th (zero-based)
// top-level argument between from and to, or (-1, -1).
func nthArgSpan(src string, from, to, n int) (int, int) {
	depth := 0
	idx := 0
	start := from
	for i := from; i < to; i++ {
		switch src[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				if idx == n {
					return trimSpan(src, start, i)
				}
				idx++
				start = i + 1
			}
		}
	}
	if idx == n {
		return trimSpan(src, start, to)
	}
	return -1, -1
}

func trimSpan(src string, start, end int) (int, int) {
	for start < end && (src[start] == ' ' || src[start] == '\t' || src[start] == '\n') {
		start++
	}
	for end > start && (src[end-1] == ' ' || src[end-1] == '\t' || src[end-1] == '\n') {
		end--
	}
	return start, end
}

// repairRangeLiteral parses an all-numeric array literal, repairs it,
// and reports whether anything changed.
func repairRangeLiteral(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return "", false
	}
	inner := strings.TrimSpace(text[1 : len(text)-1])
	if inner == "" {
		return "", false
	}
	parts := splitTopLevelArgs(inner)
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", false
		}
		values = append(values, v)
	}
	if keyframes.IsValidRange(values) {
		return "", false
	}
	repaired := keyframes.ValidateInterpolationRange(values)
	out := make([]string, len(repaired))
	for i, v := range repaired {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(out, ", ") + "]", true
}
