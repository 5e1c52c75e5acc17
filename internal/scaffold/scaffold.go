// Package scaffold writes the preview project a converted scene runs
// in: manifest, studio config, timeline registration, and the scene
// file itself. Single files can be re-rendered for recovery.
package scaffold

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"framewright/internal/projfs"
)

// ScenePath is the project-relative file transformed source lands in.
const ScenePath = "src/Scene.tsx"

// Spec describes one preview project.
type Spec struct {
	Name             string
	SceneName        string
	FPS              int
	Width            int
	Height           int
	DurationInFrames int
	// SceneSource is written verbatim to ScenePath when non-empty;
	// otherwise the starter scene is rendered.
	SceneSource string
}

func (s Spec) withDefaults() Spec {
	def := DefaultConfig()
	if strings.TrimSpace(s.Name) == "" {
		s.Name = "framewright-project"
	}
	if strings.TrimSpace(s.SceneName) == "" {
		s.SceneName = def.SceneName
	}
	if s.FPS <= 0 {
		s.FPS = def.FPS
	}
	if s.Width <= 0 {
		s.Width = def.Width
	}
	if s.Height <= 0 {
		s.Height = def.Height
	}
	if s.DurationInFrames <= 0 {
		s.DurationInFrames = def.DurationInFrames
	}
	return s
}

// BaselineDependencies returns the packages every preview project
// needs, with their pinned versions.
func BaselineDependencies() map[string]string {
	return map[string]string{
		"@remotion/cli": remotionVersion,
		"react":         reactVersion,
		"react-dom":     reactVersion,
		"remotion":      remotionVersion,
	}
}

// Files returns the project-relative paths the scaffolder owns, in
// write order.
func Files() []string {
	return []string{
		"package.json",
		"remotion.config.ts",
		"src/index.ts",
		"src/Root.tsx",
		ScenePath,
	}
}

var templatesByFile = map[string]*template.Template{
	"package.json":       packageJSONTmpl,
	"remotion.config.ts": remotionConfigTmpl,
	"src/index.ts":       indexTmpl,
	"src/Root.tsx":       rootTmpl,
	ScenePath:            starterSceneTmpl,
}

type templateData struct {
	PackageName       string
	SceneName         string
	FPS               int
	Width             int
	Height            int
	DurationInFrames  int
	RemotionVersion   string
	ReactVersion      string
	TypesReactVersion string
	TypescriptVersion string
}

var packageNameCleanRe = regexp.MustCompile(`[^a-z0-9-]+`)

// packageName lowers a project name into something npm accepts.
func packageName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	name = packageNameCleanRe.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "framewright-project"
	}
	return name
}

// Render produces the contents of one scaffold file.
func Render(name string, spec Spec) ([]byte, error) {
	spec = spec.withDefaults()

	if name == ScenePath && strings.TrimSpace(spec.SceneSource) != "" {
		src := spec.SceneSource
		if !strings.HasSuffix(src, "\n") {
			src += "\n"
		}
		return []byte(src), nil
	}

	tmpl, ok := templatesByFile[name]
	if !ok {
		return nil, fmt.Errorf("scaffold: unknown file %q", name)
	}
	data := templateData{
		PackageName:       packageName(spec.Name),
		SceneName:         spec.SceneName,
		FPS:               spec.FPS,
		Width:             spec.Width,
		Height:            spec.Height,
		DurationInFrames:  spec.DurationInFrames,
		RemotionVersion:   remotionVersion,
		ReactVersion:      reactVersion,
		TypesReactVersion: typesReactVer,
		TypescriptVersion: typescriptVer,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("scaffold: render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Scaffold writes every project file under root.
func Scaffold(root *projfs.Root, spec Spec) error {
	for _, name := range Files() {
		if err := WriteFile(root, name, spec); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile renders and writes a single scaffold file, used both for
// initial scaffolding and for restoring a file that went missing.
func WriteFile(root *projfs.Root, name string, spec Spec) error {
	data, err := Render(name, spec)
	if err != nil {
		return err
	}
	if err := root.WriteFile(name, data); err != nil {
		return fmt.Errorf("scaffold: write %s: %w", name, err)
	}
	return nil
}
