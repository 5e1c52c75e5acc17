package handler

import (
	"encoding/json"
	"net/http"

	"framewright/internal/keyframes"
)

// KeyframesHandler validates and repairs interpolation ranges without
// touching any project.
type KeyframesHandler struct{}

func NewKeyframesHandler() *KeyframesHandler {
	return &KeyframesHandler{}
}

func (h *KeyframesHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		InputRange  []float64         `json:"input_range"`
		OutputRange []json.RawMessage `json:"output_range,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	if len(in.InputRange) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "input_range is required")
		return
	}

	valid := keyframes.IsValidRange(in.InputRange)
	out := struct {
		Valid       bool              `json:"valid"`
		Changed     bool              `json:"changed"`
		InputRange  []float64         `json:"input_range"`
		OutputRange []json.RawMessage `json:"output_range,omitempty"`
	}{Valid: valid}

	if in.OutputRange != nil {
		out.InputRange, out.OutputRange = keyframes.ValidateRangePair(in.InputRange, in.OutputRange)
	} else {
		out.InputRange = keyframes.ValidateInterpolationRange(in.InputRange)
	}
	out.Changed = !valid || len(out.OutputRange) != len(in.OutputRange)

	writeJSON(w, http.StatusOK, out)
}
