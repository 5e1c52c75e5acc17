package convert

import (
	"strings"
	"testing"
)

func TestHasDefaultExport(t *testing.T) {
	if !HasDefaultExport("const A = () => <div />;\nexport default A;\n") {
		t.Fatal("real default export not detected")
	}
	if HasDefaultExport("export const A = () => <div />;\n") {
		t.Fatal("named export reported as default")
	}
	if HasDefaultExport("const s = 'export default A';\n") {
		t.Fatal("default export inside string literal detected")
	}
}

func TestDelimiterBalance(t *testing.T) {
	parens, braces, err := DelimiterBalance("function A() { return (1); }\n")
	if err != nil {
		t.Fatalf("DelimiterBalance: %v", err)
	}
	if parens != 0 || braces != 0 {
		t.Fatalf("balanced source reported %d parens, %d braces", parens, braces)
	}

	parens, braces, err = DelimiterBalance("function A() { return (1;\n")
	if err != nil {
		t.Fatalf("DelimiterBalance: %v", err)
	}
	if parens != 1 || braces != 1 {
		t.Fatalf("truncated source reported %d parens, %d braces", parens, braces)
	}

	// Literal content never counts.
	parens, _, err = DelimiterBalance("const s = '((((';\n")
	if err != nil {
		t.Fatalf("DelimiterBalance: %v", err)
	}
	if parens != 0 {
		t.Fatalf("string content counted: %d", parens)
	}
}

func TestRepairExports_AppendsMissingDefault(t *testing.T) {
	src := "function Scene() {\n  return <div>hi</div>;\n}\n"
	out, changed, err := RepairExports(src)
	if err != nil {
		t.Fatalf("RepairExports: %v", err)
	}
	if !changed {
		t.Fatal("change not reported")
	}
	if !strings.Contains(out, "export default Scene;") {
		t.Fatalf("default export missing:\n%s", out)
	}
}

func TestRepairExports_LeavesGoodModuleAlone(t *testing.T) {
	src := "function Scene() {\n  return <div>hi</div>;\n}\n\nexport default Scene;\n"
	out, changed, err := RepairExports(src)
	if err != nil {
		t.Fatalf("RepairExports: %v", err)
	}
	if changed {
		t.Fatalf("unexpected rewrite:\n%s", out)
	}
	if out != src {
		t.Fatal("output differs from input")
	}
}
