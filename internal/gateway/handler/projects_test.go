package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framewright/internal/gateway/repository/projectstore"
	gatewayproject "framewright/internal/gateway/service/project"
	"framewright/internal/media"
	"framewright/internal/preview"
	"framewright/internal/scaffold"
)

func newProjectsHandler(t *testing.T, gen *media.Generator) *ProjectsHandler {
	t.Helper()
	dir := t.TempDir()
	store := projectstore.New(filepath.Join(dir, "projects.json"))
	sup := preview.New(preview.Config{PortMin: 42920, PortMax: 42930})
	svc, err := gatewayproject.New(store, sup, filepath.Join(dir, "projects"), scaffold.DefaultConfig())
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	t.Cleanup(svc.StopAll)
	return NewProjectsHandler(svc, gen)
}

func do(t *testing.T, h *ProjectsHandler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func createProject(t *testing.T, h *ProjectsHandler, body map[string]any) (string, map[string]any) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/v1/projects", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	project, _ := out["project"].(map[string]any)
	id, _ := project["id"].(string)
	if id == "" {
		t.Fatalf("create response carries no project id: %s", rec.Body.String())
	}
	return id, out
}

func TestProjects_CreateListGetDelete(t *testing.T) {
	h := newProjectsHandler(t, nil)

	id, _ := createProject(t, h, map[string]any{"name": "demo"})

	rec := do(t, h, http.MethodGet, "/v1/projects", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decodeBody(t, rec)
	projects, _ := list["projects"].([]any)
	if len(projects) != 1 {
		t.Fatalf("projects = %v, want one entry", list["projects"])
	}

	rec = do(t, h, http.MethodGet, "/v1/projects/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/v1/projects/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/projects/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}
}

func TestProjects_CreateFromInteractiveSource(t *testing.T) {
	h := newProjectsHandler(t, nil)

	src := `import { useState, useEffect } from 'react';

export default function Pulse() {
  const [on, setOn] = useState(false);
  useEffect(() => {
    const t = setInterval(() => setOn((v) => !v), 500);
    return () => clearInterval(t);
  }, []);
  return <div style={{ opacity: on ? 1 : 0.2 }} />;
}
`
	id, out := createProject(t, h, map[string]any{"name": "pulse", "source": src})

	conv, _ := out["conversion"].(map[string]any)
	if conv == nil {
		t.Fatalf("create with source should report a conversion: %v", out)
	}
	if conv["component_name"] != "Pulse" {
		t.Fatalf("component_name = %v", conv["component_name"])
	}

	rec := do(t, h, http.MethodGet, "/v1/projects/"+id+"/scene", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("scene status = %d", rec.Code)
	}
	scene := decodeBody(t, rec)
	source, _ := scene["source"].(string)
	if !strings.Contains(source, "useCurrentFrame") {
		t.Fatalf("stored scene should be frame-driven:\n%s", source)
	}
	if scene["component"] != "Pulse" {
		t.Fatalf("component = %v", scene["component"])
	}
}

func TestProjects_UpdateSceneRequiresSource(t *testing.T) {
	h := newProjectsHandler(t, nil)
	id, _ := createProject(t, h, map[string]any{"name": "demo"})

	rec := do(t, h, http.MethodPut, "/v1/projects/"+id+"/scene", map[string]any{"source": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProjects_UpdateSceneConverts(t *testing.T) {
	h := newProjectsHandler(t, nil)
	id, _ := createProject(t, h, map[string]any{"name": "demo"})

	rec := do(t, h, http.MethodPut, "/v1/projects/"+id+"/scene", map[string]any{
		"source": `export default function Title() { return <h1>hello</h1>; }`,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	project, _ := out["project"].(map[string]any)
	if project["scene_component"] != "Title" {
		t.Fatalf("scene_component = %v", project["scene_component"])
	}
}

func TestProjects_IntegrityHealthyAfterCreate(t *testing.T) {
	h := newProjectsHandler(t, nil)
	id, _ := createProject(t, h, map[string]any{"name": "demo"})

	rec := do(t, h, http.MethodGet, "/v1/projects/"+id+"/integrity", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["healthy"] != true {
		t.Fatalf("fresh project should be healthy: %s", rec.Body.String())
	}
}

func TestProjects_IntegrityRepairRestoresScene(t *testing.T) {
	h := newProjectsHandler(t, nil)
	id, out := createProject(t, h, map[string]any{"name": "demo"})

	project, _ := out["project"].(map[string]any)
	dir, _ := project["dir"].(string)
	if dir == "" {
		t.Fatalf("create response carries no dir: %v", out)
	}
	if err := os.Remove(filepath.Join(dir, "src", "Scene.tsx")); err != nil {
		t.Fatalf("remove scene: %v", err)
	}

	rec := do(t, h, http.MethodGet, "/v1/projects/"+id+"/integrity", nil)
	if decodeBody(t, rec)["healthy"] != false {
		t.Fatal("missing scene should be unhealthy")
	}

	rec = do(t, h, http.MethodPost, "/v1/projects/"+id+"/integrity/repair", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("repair status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decodeBody(t, rec)
	actions, _ := res["actions"].([]any)
	if len(actions) == 0 {
		t.Fatalf("repair took no actions: %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/projects/"+id+"/integrity", nil)
	if decodeBody(t, rec)["healthy"] != true {
		t.Fatalf("project still unhealthy after repair: %s", rec.Body.String())
	}
}

func TestProjects_UnknownRouteIs404(t *testing.T) {
	h := newProjectsHandler(t, nil)
	id, _ := createProject(t, h, map[string]any{"name": "demo"})

	rec := do(t, h, http.MethodGet, "/v1/projects/"+id+"/nonsense", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestProjects_MediaWithoutGeneratorIs501(t *testing.T) {
	h := newProjectsHandler(t, nil)
	id, _ := createProject(t, h, map[string]any{"name": "demo"})

	rec := do(t, h, http.MethodPost, "/v1/projects/"+id+"/media/speech", map[string]any{"text": "hi"})
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

func TestProjects_SoundGenerationRoundtrip(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/search/text/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{
				"id":   101,
				"name": "whoosh",
				"previews": map[string]string{
					"preview-hq-mp3": srv.URL + "/previews/101.mp3",
				},
			}},
		})
	})
	mux.HandleFunc("/previews/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3 fake mp3 payload"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	sound, err := media.NewSoundClient(media.SoundConfig{BaseURL: srv.URL, Token: "token"})
	if err != nil {
		t.Fatalf("sound client: %v", err)
	}
	assets, err := media.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}
	gen, err := media.NewGenerator(nil, nil, sound, assets)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}

	h := newProjectsHandler(t, gen)
	id, _ := createProject(t, h, map[string]any{"name": "demo"})

	rec := do(t, h, http.MethodPost, "/v1/projects/"+id+"/media/sound", map[string]any{"query": "whoosh"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate status = %d, body %s", rec.Code, rec.Body.String())
	}
	asset := decodeBody(t, rec)
	name, _ := asset["name"].(string)
	if name == "" || !strings.HasSuffix(name, ".mp3") {
		t.Fatalf("asset name = %q", name)
	}

	rec = do(t, h, http.MethodGet, "/v1/projects/"+id+"/media/sound", nil)
	list := decodeBody(t, rec)
	names, _ := list["assets"].([]any)
	if len(names) != 1 {
		t.Fatalf("assets = %v, want one", list["assets"])
	}

	rec = do(t, h, http.MethodGet, "/v1/projects/"+id+"/media/sound/"+name, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("serve status = %d", rec.Code)
	}
	if rec.Body.String() != "ID3 fake mp3 payload" {
		t.Fatalf("served bytes = %q", rec.Body.String())
	}

	// Speech stays unconfigured on this generator.
	rec = do(t, h, http.MethodPost, "/v1/projects/"+id+"/media/speech", map[string]any{"text": "hi"})
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("speech status = %d, want 501", rec.Code)
	}
}
