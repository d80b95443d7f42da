package handle

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"latex-proxy/api/internal/document"
	"latex-proxy/api/internal/llm"
)

// maxBody bounds JSON request bodies; drawings arrive base64-encoded.
const maxBody = 32 << 20

// GenerateLatex handles POST /generate-latex/. Provider and compile failures
// are reported in the body with status 200.
func (h *Handle) GenerateLatex(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req document.GenerationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}

	res, err := h.docs.Generate(r.Context(), req)
	h.respondResult(w, r, "generate", res, err)
}

// ProcessDrawing handles POST /process-drawing/.
func (h *Handle) ProcessDrawing(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req document.DrawingRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}

	res, err := h.docs.ProcessDrawing(r.Context(), req)
	h.respondResult(w, r, "drawing", res, err)
}

func (h *Handle) respondResult(w http.ResponseWriter, r *http.Request, op string, res document.Result, err error) {
	code := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, document.ErrEmptyPrompt),
		errors.Is(err, document.ErrBadImage),
		errors.Is(err, llm.ErrUnknownEngine):
		code = http.StatusBadRequest
	}
	if err != nil {
		h.logger.Info(op+" failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Int("status", code),
			zap.String("message", res.Message))
	}
	writeJSON(w, code, res)
}
