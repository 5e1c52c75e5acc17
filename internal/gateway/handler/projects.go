package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"framewright/internal/convert"
	gatewayproject "framewright/internal/gateway/service/project"
	"framewright/internal/media"
)

// ProjectsHandler serves everything under /v1/projects: CRUD, scene
// rewrites, preview control, integrity, media generation, and the
// websocket event stream.
type ProjectsHandler struct {
	svc *gatewayproject.Service
	gen *media.Generator
}

func NewProjectsHandler(svc *gatewayproject.Service, gen *media.Generator) *ProjectsHandler {
	return &ProjectsHandler{svc: svc, gen: gen}
}

// Handle dispatches by path segment below /v1/projects.
func (h *ProjectsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/projects"), "/")
	if rest == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(rest, "/")
	id := strings.TrimSpace(parts[0])
	tail := parts[1:]

	switch {
	case len(tail) == 0:
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case tail[0] == "scene" && len(tail) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleScene(w, r, id)
		case http.MethodPut, http.MethodPost:
			h.handleUpdateScene(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case tail[0] == "preview" && len(tail) == 1:
		// Bare verb form: POST starts, DELETE stops.
		switch r.Method {
		case http.MethodPost:
			h.handlePreview(w, r, id, "start")
		case http.MethodDelete:
			h.handleStopPreview(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case tail[0] == "preview" && len(tail) == 2:
		h.handlePreview(w, r, id, tail[1])
	case tail[0] == "integrity" && len(tail) == 1:
		h.handleIntegrity(w, r, id)
	case tail[0] == "integrity" && len(tail) == 2 && tail[1] == "repair":
		h.handleRepair(w, r, id)
	case tail[0] == "events" && len(tail) == 1:
		h.HandleEvents(w, r, id)
	case tail[0] == "media":
		h.handleMedia(w, r, id, tail[1:])
	default:
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	}
}

type conversionSummary struct {
	ComponentName     string            `json:"component_name"`
	Pattern           string            `json:"pattern"`
	KeyframeRepairs   int               `json:"keyframe_repairs"`
	AddedDependencies map[string]string `json:"added_dependencies,omitempty"`
	Notes             []convertNote     `json:"notes,omitempty"`
}

func summarize(res *convert.Result) *conversionSummary {
	if res == nil {
		return nil
	}
	out := &conversionSummary{
		ComponentName:     res.ComponentName,
		Pattern:           res.Pattern.String(),
		KeyframeRepairs:   res.KeyframeRepairs,
		AddedDependencies: res.AddedDependencies,
	}
	for _, n := range res.Notes {
		out.Notes = append(out.Notes, convertNote{Kind: n.Kind.String(), Message: n.Message})
	}
	return out
}

func (h *ProjectsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name   string `json:"name"`
		Source string `json:"source,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	res, err := h.svc.Create(r.Context(), gatewayproject.CreateRequest{Name: in.Name, Source: in.Source})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		gatewayproject.Entry
		Conversion *conversionSummary `json:"conversion,omitempty"`
	}{res.Entry, summarize(res.Convert)})
}

func (h *ProjectsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.List(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"projects": entries})
}

func (h *ProjectsHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *ProjectsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *ProjectsHandler) handleScene(w http.ResponseWriter, r *http.Request, id string) {
	source, err := h.svc.Scene(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":    source,
		"component": e.Project.SceneComponent,
	})
}

func (h *ProjectsHandler) handleUpdateScene(w http.ResponseWriter, r *http.Request, id string) {
	var in struct {
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	if strings.TrimSpace(in.Source) == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "source is required")
		return
	}
	entry, res, err := h.svc.UpdateScene(r.Context(), id, in.Source)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		gatewayproject.Entry
		Conversion *conversionSummary `json:"conversion,omitempty"`
	}{entry, summarize(res)})
}

func (h *ProjectsHandler) handlePreview(w http.ResponseWriter, r *http.Request, id, action string) {
	switch action {
	case "start":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		e, err := h.svc.StartPreview(r.Context(), id)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	case "stop":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStopPreview(w, r, id)
	case "logs":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		lines, err := h.svc.PreviewLogs(id)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"project_id": id,
			"lines":      lines,
		})
	default:
		writeError(w, http.StatusNotFound, "not_found", "no such preview action")
	}
}

func (h *ProjectsHandler) handleStopPreview(w http.ResponseWriter, r *http.Request, id string) {
	e, err := h.svc.StopPreview(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *ProjectsHandler) handleIntegrity(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	report, err := h.svc.Check(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"healthy":  report.Healthy(),
		"findings": report.Findings,
	})
}

func (h *ProjectsHandler) handleRepair(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	res, err := h.svc.Repair(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// fail maps service errors onto the response taxonomy.
func (h *ProjectsHandler) fail(w http.ResponseWriter, err error) {
	var cerr *convert.ConversionError
	switch {
	case errors.Is(err, gatewayproject.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &cerr):
		writeError(w, http.StatusUnprocessableEntity, "unconvertible", err.Error())
	case errors.Is(err, media.ErrUnconfigured):
		writeError(w, http.StatusNotImplemented, "unconfigured", err.Error())
	case errors.Is(err, media.ErrNoMatch), errors.Is(err, media.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
