package scaffold

import (
	"encoding/json"
	"strings"
	"testing"

	"framewright/internal/projfs"
)

func TestScaffold_WritesAllFiles(t *testing.T) {
	root, err := projfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("projfs: %v", err)
	}
	spec := Spec{Name: "My Demo", FPS: 60, DurationInFrames: 300}
	if err := Scaffold(root, spec); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	for _, name := range Files() {
		if !root.Exists(name) {
			t.Fatalf("missing %s", name)
		}
	}

	b, err := root.ReadFile("package.json")
	if err != nil {
		t.Fatalf("read package.json: %v", err)
	}
	var doc struct {
		Name         string            `json:"name"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("package.json invalid: %v\n%s", err, b)
	}
	if doc.Name != "my-demo" {
		t.Fatalf("package name = %q", doc.Name)
	}
	if doc.Dependencies["remotion"] == "" || doc.Dependencies["react"] == "" {
		t.Fatalf("baseline dependencies missing: %v", doc.Dependencies)
	}
}

func TestScaffold_RootRegistersComposition(t *testing.T) {
	root, err := projfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("projfs: %v", err)
	}
	if err := Scaffold(root, Spec{Name: "demo", FPS: 24, Width: 1280, Height: 720, DurationInFrames: 96}); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	b, err := root.ReadFile("src/Root.tsx")
	if err != nil {
		t.Fatalf("read Root.tsx: %v", err)
	}
	src := string(b)
	for _, want := range []string{"<Composition", "fps={24}", "width={1280}", "height={720}", "durationInFrames={96}", "component={Scene}"} {
		if !strings.Contains(src, want) {
			t.Fatalf("Root.tsx missing %q:\n%s", want, src)
		}
	}
	if strings.Contains(src, "<<") || strings.Contains(src, ">>") {
		t.Fatalf("unexpanded template action:\n%s", src)
	}
}

func TestRender_SceneUsesProvidedSource(t *testing.T) {
	scene := "const Scene = () => <div>converted</div>;\n\nexport default Scene;"
	got, err := Render(ScenePath, Spec{SceneSource: scene})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(got) != scene+"\n" {
		t.Fatalf("scene source rewritten:\n%s", got)
	}
}

func TestRender_StarterSceneWhenEmpty(t *testing.T) {
	got, err := Render(ScenePath, Spec{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	src := string(got)
	if !strings.Contains(src, "useCurrentFrame()") || !strings.Contains(src, "export default Scene;") {
		t.Fatalf("starter scene malformed:\n%s", src)
	}
}

func TestRender_UnknownFile(t *testing.T) {
	if _, err := Render("src/Other.tsx", Spec{}); err == nil {
		t.Fatal("expected error for unknown file")
	}
}

func TestLoadConfig_MergeAndEnvOverlay(t *testing.T) {
	root, err := projfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("projfs: %v", err)
	}
	if err := root.WriteFile("studio.yaml", []byte("fps: 25\nscene_name: Clip\n")); err != nil {
		t.Fatalf("write config: %v", err)
	}
	path, err := root.Abs("studio.yaml")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	t.Setenv("FRAMEWRIGHT_WIDTH", "1280")
	t.Setenv("FRAMEWRIGHT_FPS", "")
	t.Setenv("FRAMEWRIGHT_HEIGHT", "")
	t.Setenv("FRAMEWRIGHT_DURATION", "")
	t.Setenv("FRAMEWRIGHT_SCENE_NAME", "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FPS != 25 {
		t.Fatalf("fps = %d", cfg.FPS)
	}
	if cfg.SceneName != "Clip" {
		t.Fatalf("scene name = %q", cfg.SceneName)
	}
	if cfg.Width != 1280 {
		t.Fatalf("width = %d, env overlay not applied", cfg.Width)
	}
	if cfg.Height != 1080 || cfg.DurationInFrames != 150 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestPackageName_Cleaning(t *testing.T) {
	cases := map[string]string{
		"My Demo":       "my-demo",
		"hello_world!!": "hello-world",
		"  ":            "framewright-project",
		"Already-ok":    "already-ok",
	}
	for in, want := range cases {
		if got := packageName(in); got != want {
			t.Errorf("packageName(%q) = %q, want %q", in, got, want)
		}
	}
}
