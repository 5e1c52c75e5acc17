package convert

import (
	"errors"
	"strings"
	"testing"
)

func TestGuardSource_RoundTrip(t *testing.T) {
	src := "const msg = \"He said \\\"hi\\\"\";\n" +
		"const tpl = `count: ${n + 1} ${`inner ${x}`}`;\n" +
		"// keep out\n" +
		"/* multi\nline */\n" +
		"const re = /[a-z]+/g;\n" +
		"const jsx = <p>It's what's happening, don't stop</p>;\n"
	fenced, fences, err := guardSource(src)
	if err != nil {
		t.Fatalf("guardSource: %v", err)
	}
	for _, leaked := range []string{"said", "keep out", "count:", "multi", "[a-z]"} {
		if strings.Contains(fenced, leaked) {
			t.Fatalf("literal content %q leaked into fenced text:\n%s", leaked, fenced)
		}
	}
	if got := fences.restore(fenced); got != src {
		t.Fatalf("round trip mismatch:\ngot  %q\nwant %q", got, src)
	}
}

func TestGuardSource_ApostropheInProse(t *testing.T) {
	src := "<p>don't stop</p>"
	fenced, _, err := guardSource(src)
	if err != nil {
		t.Fatalf("guardSource: %v", err)
	}
	if fenced != src {
		t.Fatalf("prose apostrophe must not open a string:\ngot  %q\nwant %q", fenced, src)
	}
}

func TestGuardSource_ClosingTagSlashIsNotRegex(t *testing.T) {
	src := "const a = <p>x</p>; const b = <i>y</i>;\n"
	fenced, _, err := guardSource(src)
	if err != nil {
		t.Fatalf("guardSource: %v", err)
	}
	if strings.Contains(fenced, "__FW_RAW_") {
		t.Fatalf("closing tag slashes were fenced as a regex:\n%s", fenced)
	}
}

func TestGuardSource_AttributeStrings(t *testing.T) {
	src := `<div className='card' title="it's fine">{x < 'a' ? 'lo' : 'hi'}</div>`
	fenced, fences, err := guardSource(src)
	if err != nil {
		t.Fatalf("guardSource: %v", err)
	}
	for _, leaked := range []string{"card", "it's fine", "lo", "hi"} {
		if strings.Contains(fenced, leaked) {
			t.Fatalf("attribute string %q leaked:\n%s", leaked, fenced)
		}
	}
	if got := fences.restore(fenced); got != src {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestGuardSource_UnterminatedTemplate(t *testing.T) {
	_, _, err := guardSource("const a = `oops;\n")
	var cerr *ConversionError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConversionError, got %v", err)
	}
	if !strings.Contains(cerr.Reason, "template") {
		t.Fatalf("unexpected reason %q", cerr.Reason)
	}
}

func TestGuardSource_UnterminatedBlockComment(t *testing.T) {
	_, _, err := guardSource("/* nope\nconst a = 1;\n")
	var cerr *ConversionError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConversionError, got %v", err)
	}
	if !strings.Contains(cerr.Reason, "comment") {
		t.Fatalf("unexpected reason %q", cerr.Reason)
	}
}

func TestScanTemplate_NestedExpressions(t *testing.T) {
	src := "`a ${fn({k: '}'})} b`"
	end := scanTemplate(src, 0)
	if end != len(src) {
		t.Fatalf("scanTemplate end = %d, want %d", end, len(src))
	}
}
