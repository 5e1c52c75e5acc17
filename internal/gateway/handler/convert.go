package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"framewright/internal/cache"
	"framewright/internal/convert"
)

// ConvertHandler serves stateless source conversion. Results are
// cached by content hash so repeated submissions of the same paste
// skip the pipeline.
type ConvertHandler struct {
	cache *cache.LRU[string, convertResponse]
}

func NewConvertHandler() *ConvertHandler {
	return &ConvertHandler{
		cache: cache.New[string, convertResponse](256, 64<<20, 15*time.Minute),
	}
}

type convertNote struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type convertResponse struct {
	Code              string            `json:"code"`
	ComponentName     string            `json:"component_name"`
	Pattern           string            `json:"pattern"`
	RetainedImports   []string          `json:"retained_imports,omitempty"`
	AddedDependencies map[string]string `json:"added_dependencies,omitempty"`
	KeyframeRepairs   int               `json:"keyframe_repairs"`
	Notes             []convertNote     `json:"notes,omitempty"`
}

func (h *ConvertHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Source string `json:"source"`
		FPS    int    `json:"fps,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	if strings.TrimSpace(in.Source) == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "source is required")
		return
	}

	key := convertCacheKey(in.Source, in.FPS)
	if cached, ok := h.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	res, err := convert.ConvertWithOptions(in.Source, convert.Options{FPS: in.FPS})
	if err != nil {
		var cerr *convert.ConversionError
		if errors.As(err, &cerr) {
			writeError(w, http.StatusUnprocessableEntity, "unconvertible", cerr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	out := convertResponse{
		Code:              res.Code,
		ComponentName:     res.ComponentName,
		Pattern:           res.Pattern.String(),
		RetainedImports:   res.RetainedImports,
		AddedDependencies: res.AddedDependencies,
		KeyframeRepairs:   res.KeyframeRepairs,
	}
	for _, n := range res.Notes {
		out.Notes = append(out.Notes, convertNote{Kind: n.Kind.String(), Message: n.Message})
	}
	h.cache.Set(key, out, len(out.Code))
	writeJSON(w, http.StatusOK, out)
}

func convertCacheKey(source string, fps int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d\x00%s", fps, source)))
	return hex.EncodeToString(sum[:])
}
