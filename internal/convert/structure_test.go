package convert

import (
	"strings"
	"testing"
)

func TestConvert_UnwrapsCompositionPair(t *testing.T) {
	src := `import { Composition } from 'remotion';

export default function App() {
  return (
    <Composition id="main" durationInFrames={120} fps={30}>
      <div>hello</div>
    </Composition>
  );
}
`
	res := convertOK(t, src)
	if strings.Contains(res.Code, "<Composition") || strings.Contains(res.Code, "</Composition>") {
		t.Fatalf("wrapper tags survived:\n%s", res.Code)
	}
	if !strings.Contains(res.Code, "<div>hello</div>") {
		t.Fatalf("children were not promoted:\n%s", res.Code)
	}
	if !hasNote(res, NoteStructuralRepair) {
		t.Fatalf("expected structural repair note, got %v", res.Notes)
	}
}

func TestConvert_SelfClosingWrapperBecomesComponent(t *testing.T) {
	src := `export default function Root() {
  return <Composition id="clip" component={Clip} durationInFrames={90} fps={30} width={1920} height={1080} />;
}
`
	res := convertOK(t, src)
	if !strings.Contains(res.Code, "<Clip />") {
		t.Fatalf("component reference lost:\n%s", res.Code)
	}
	if strings.Contains(res.Code, "Composition") {
		t.Fatalf("wrapper survived:\n%s", res.Code)
	}
}

func TestConvert_AppendsMissingClosers(t *testing.T) {
	src := `export default function App() {
  return (
    <div>cut off</div>
`
	res := convertOK(t, src)
	if n := countRuneBalance(res.Code, '{', '}'); n != 0 {
		t.Fatalf("brace balance = %d after repair:\n%s", n, res.Code)
	}
	if n := countRuneBalance(res.Code, '(', ')'); n != 0 {
		t.Fatalf("paren balance = %d after repair:\n%s", n, res.Code)
	}
	if !hasNote(res, NoteStructuralRepair) {
		t.Fatalf("expected structural repair note, got %v", res.Notes)
	}
}

func TestRepairDelimiters_BalancedUntouched(t *testing.T) {
	src := "function A() { return (1); }\n"
	var res Result
	if got := repairDelimiters(src, &res); got != src {
		t.Fatalf("balanced source modified: %q", got)
	}
	if len(res.Notes) != 0 {
		t.Fatalf("unexpected notes %v", res.Notes)
	}
}

func hasNote(res *Result, kind NoteKind) bool {
	for _, n := range res.Notes {
		if n.Kind == kind {
			return true
		}
	}
	return false
}
