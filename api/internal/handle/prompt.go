package handle

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"latex-proxy/api/internal/document"
)

// UpdateSystemPrompt handles POST /system-prompt/ and stores an override for
// one of the built-in instructions.
func (h *Handle) UpdateSystemPrompt(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	defer r.Body.Close()

	var req document.PromptUpdate
	if err := json.NewDecoder(io.LimitReader(r.Body, 4<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}

	res, err := h.docs.SavePrompt(req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, document.ErrBadPrompt):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, document.ErrPromptDirUnset):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "save prompt: "+err.Error())
	}
}
