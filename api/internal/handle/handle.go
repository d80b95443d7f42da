// Package handle is the HTTP surface of the service.
package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"latex-proxy/api/internal/document"
	"latex-proxy/api/internal/latex"
)

// Documents is what the handlers need from the document service.
type Documents interface {
	Generate(ctx context.Context, req document.GenerationRequest) (document.Result, error)
	ProcessDrawing(ctx context.Context, req document.DrawingRequest) (document.Result, error)
	Update(text string) error
	Compile(ctx context.Context) (latex.Result, error)
	Source() (string, error)
	Artifact() ([]byte, error)
	CompileLog() (string, error)
	SavePrompt(u document.PromptUpdate) (document.PromptUpdateResult, error)
}

type Handle struct {
	docs   Documents
	logger *zap.Logger
}

func New(docs Documents, logger *zap.Logger) *Handle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handle{
		docs:   docs,
		logger: logger,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Log     string `json:"log,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}
