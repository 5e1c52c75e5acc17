package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"path"
	"strings"

	"framewright/internal/media"
)

func mediaKind(segment string) (media.Kind, bool) {
	switch segment {
	case "speech":
		return media.KindSpeech, true
	case "imagery":
		return media.KindImagery, true
	case "sound":
		return media.KindSound, true
	}
	return "", false
}

// handleMedia serves /v1/projects/{id}/media/{kind}[/{name}].
func (h *ProjectsHandler) handleMedia(w http.ResponseWriter, r *http.Request, id string, tail []string) {
	if h.gen == nil {
		writeError(w, http.StatusNotImplemented, "unconfigured", "media generation is not configured")
		return
	}
	if len(tail) == 0 || len(tail) > 2 {
		writeError(w, http.StatusNotFound, "not_found", "no such media route")
		return
	}
	kind, ok := mediaKind(tail[0])
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown media kind: "+tail[0])
		return
	}
	// The project must exist before anything is generated or listed
	// under its key.
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}

	if len(tail) == 2 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.serveAsset(w, r, id, kind, tail[1])
		return
	}

	switch r.Method {
	case http.MethodGet:
		names, err := h.gen.List(r.Context(), id, kind)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"project_id": id,
			"kind":       kind,
			"assets":     names,
		})
	case http.MethodPost:
		h.generateAsset(w, r, id, kind)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *ProjectsHandler) generateAsset(w http.ResponseWriter, r *http.Request, id string, kind media.Kind) {
	var in struct {
		Text   string `json:"text,omitempty"`
		Voice  string `json:"voice,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Query  string `json:"query,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}

	var (
		asset media.Asset
		err   error
	)
	switch kind {
	case media.KindSpeech:
		if strings.TrimSpace(in.Text) == "" {
			writeError(w, http.StatusBadRequest, "invalid_argument", "text is required")
			return
		}
		asset, err = h.gen.GenerateSpeech(r.Context(), id, in.Text, in.Voice)
	case media.KindImagery:
		if strings.TrimSpace(in.Prompt) == "" {
			writeError(w, http.StatusBadRequest, "invalid_argument", "prompt is required")
			return
		}
		asset, err = h.gen.GenerateImagery(r.Context(), id, in.Prompt)
	case media.KindSound:
		if strings.TrimSpace(in.Query) == "" {
			writeError(w, http.StatusBadRequest, "invalid_argument", "query is required")
			return
		}
		asset, err = h.gen.GenerateSound(r.Context(), id, in.Query)
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

func (h *ProjectsHandler) serveAsset(w http.ResponseWriter, r *http.Request, id string, kind media.Kind, name string) {
	data, err := h.gen.Open(r.Context(), id, kind, name)
	if err != nil {
		h.fail(w, err)
		return
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
