package integrity

import (
	"strings"
	"testing"

	"framewright/internal/manifest"
	"framewright/internal/projfs"
	"framewright/internal/scaffold"
)

func scaffolded(t *testing.T) (*projfs.Root, scaffold.Spec) {
	t.Helper()
	root, err := projfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("projfs: %v", err)
	}
	spec := scaffold.Spec{Name: "demo"}
	if err := scaffold.Scaffold(root, spec); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	return root, spec
}

func TestCheck_HealthyProject(t *testing.T) {
	root, _ := scaffolded(t)
	rep := Check(root)
	if !rep.Healthy() {
		t.Fatalf("fresh project unhealthy: %+v", rep.Findings)
	}
	if len(rep.Findings) != 0 {
		t.Fatalf("unexpected findings: %+v", rep.Findings)
	}
}

func TestCheck_MissingFile(t *testing.T) {
	root, _ := scaffolded(t)
	if err := root.Remove("src/Root.tsx"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rep := Check(root)
	if rep.Healthy() {
		t.Fatal("missing file not detected")
	}
	found := false
	for _, f := range rep.Findings {
		if f.File == "src/Root.tsx" && f.Severity == SeverityError {
			found = true
		}
	}
	if !found {
		t.Fatalf("no finding for missing Root.tsx: %+v", rep.Findings)
	}
}

func TestRepair_RestoresMissingFiles(t *testing.T) {
	root, spec := scaffolded(t)
	if err := root.Remove("remotion.config.ts"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := root.Remove("src/index.ts"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	res, err := Repair(root, spec)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if res.Before.Healthy() {
		t.Fatal("before-report misses the damage")
	}
	if !res.After.Healthy() {
		t.Fatalf("repair left project unhealthy: %+v", res.After.Findings)
	}
	if !root.Exists("remotion.config.ts") || !root.Exists("src/index.ts") {
		t.Fatal("files not restored")
	}
	if len(res.Actions) == 0 {
		t.Fatal("no actions recorded")
	}
}

func TestRepair_RestoresBaselineDependencies(t *testing.T) {
	root, spec := scaffolded(t)
	if err := root.WriteFile("package.json", []byte(`{"name":"demo","dependencies":{"react":"18.3.1"}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	rep := Check(root)
	warned := false
	for _, f := range rep.Findings {
		if f.Severity == SeverityWarning && strings.Contains(f.Message, "remotion") {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("missing dependency not flagged: %+v", rep.Findings)
	}

	if _, err := Repair(root, spec); err != nil {
		t.Fatalf("Repair: %v", err)
	}
	path, err := root.Abs("package.json")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("reload manifest: %v", err)
	}
	for dep := range scaffold.BaselineDependencies() {
		if !m.HasDependency(dep) {
			t.Fatalf("dependency %s not restored", dep)
		}
	}
	if m.Dependencies()["react"] != "18.3.1" {
		t.Fatal("existing pin overwritten")
	}
}

func TestRepair_RestoresSceneDefaultExport(t *testing.T) {
	root, spec := scaffolded(t)
	scene := "function Scene() {\n  return <div>hi</div>;\n}\n"
	if err := root.WriteFile(scaffold.ScenePath, []byte(scene)); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := Repair(root, spec)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !res.After.Healthy() {
		t.Fatalf("still unhealthy: %+v", res.After.Findings)
	}
	b, err := root.ReadFile(scaffold.ScenePath)
	if err != nil {
		t.Fatalf("read scene: %v", err)
	}
	if !strings.Contains(string(b), "export default Scene;") {
		t.Fatalf("default export not restored:\n%s", b)
	}
	if !strings.Contains(string(b), "<div>hi</div>") {
		t.Fatal("scene content lost")
	}
}

func TestRepair_RebalancesTruncatedScene(t *testing.T) {
	root, spec := scaffolded(t)
	scene := "function Scene() {\n  return (\n    <div>cut</div>\n"
	if err := root.WriteFile(scaffold.ScenePath, []byte(scene)); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := Repair(root, spec)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !res.After.Healthy() {
		t.Fatalf("still unhealthy: %+v", res.After.Findings)
	}
	b, _ := root.ReadFile(scaffold.ScenePath)
	parens, braces := 0, 0
	for _, c := range string(b) {
		switch c {
		case '(':
			parens++
		case ')':
			parens--
		case '{':
			braces++
		case '}':
			braces--
		}
	}
	if parens != 0 || braces != 0 {
		t.Fatalf("scene still unbalanced (%d, %d):\n%s", parens, braces, b)
	}
}

func TestRepair_Idempotent(t *testing.T) {
	root, spec := scaffolded(t)
	if _, err := Repair(root, spec); err != nil {
		t.Fatalf("first repair: %v", err)
	}
	res, err := Repair(root, spec)
	if err != nil {
		t.Fatalf("second repair: %v", err)
	}
	if len(res.Actions) != 0 {
		t.Fatalf("repair on healthy project acted: %v", res.Actions)
	}
}
