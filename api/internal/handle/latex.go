package handle

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"latex-proxy/api/internal/latex"
	"latex-proxy/api/internal/store"
)

// maxForm bounds the in-memory part of a multipart update.
const maxForm = 8 << 20

type sourceResponse struct {
	LatexCode string `json:"latex_code"`
}

// UpdateLatex handles POST /update-latex/ with a latex_code form field,
// multipart or urlencoded. It only stores the text.
func (h *Handle) UpdateLatex(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxForm); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "bad form: "+err.Error())
		return
	}
	if _, ok := r.Form["latex_code"]; !ok {
		writeError(w, http.StatusBadRequest, "latex_code is required")
		return
	}

	if err := h.docs.Update(r.FormValue("latex_code")); err != nil {
		h.logger.Error("update latex", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save LaTeX code: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "LaTeX code saved successfully"})
}

// CompileLatex handles POST /compile-latex/. A document that fails to compile
// is reported in the body with status 200.
func (h *Handle) CompileLatex(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	res, err := h.docs.Compile(r.Context())
	if err == nil {
		writeJSON(w, http.StatusOK, res)
		return
	}

	var ce *latex.CompileError
	switch {
	case errors.Is(err, latex.ErrSourceNotFound):
		writeError(w, http.StatusNotFound, "LaTeX file not found")
	case errors.As(err, &ce):
		writeJSON(w, http.StatusOK, errorResponse{Error: ce.Message, Details: ce.Details, Log: ce.Log})
	default:
		h.logger.Error("compile latex", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Compilation failed: "+err.Error())
	}
}

// LatexPDF handles GET /latex-pdf/. The artifact is read at request time.
func (h *Handle) LatexPDF(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	pdf, err := h.docs.Artifact()
	if err != nil {
		h.notFound(w, err, "PDF file not found", store.ErrArtifactNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+store.ArtifactFile+`"`)
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, store.ArtifactFile, time.Time{}, bytes.NewReader(pdf))
}

// LatexSource handles GET /latex-source/.
func (h *Handle) LatexSource(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	src, err := h.docs.Source()
	if err != nil {
		h.notFound(w, err, "LaTeX file not found", store.ErrSourceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sourceResponse{LatexCode: src})
}

// LatexLog handles GET /latex-log/ and returns the last compiler output.
func (h *Handle) LatexLog(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	text, err := h.docs.CompileLog()
	if err != nil {
		h.notFound(w, err, "Compilation log not found", store.ErrLogNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (h *Handle) notFound(w http.ResponseWriter, err error, msg string, sentinel error) {
	if errors.Is(err, sentinel) {
		writeError(w, http.StatusNotFound, msg)
		return
	}
	h.logger.Error("read workspace", zap.Error(err))
	writeError(w, http.StatusInternalServerError, strings.TrimSpace(err.Error()))
}
