package handle

import "net/http"

// Routes registers every endpoint on mux, each with and without the trailing
// slash.
func (h *Handle) Routes(mux *http.ServeMux) {
	for path, fn := range map[string]http.HandlerFunc{
		"/generate-latex":  h.GenerateLatex,
		"/process-drawing": h.ProcessDrawing,
		"/update-latex":    h.UpdateLatex,
		"/compile-latex":   h.CompileLatex,
		"/latex-pdf":       h.LatexPDF,
		"/latex-source":    h.LatexSource,
		"/latex-log":       h.LatexLog,
		"/system-prompt":   h.UpdateSystemPrompt,
	} {
		mux.HandleFunc(path, fn)
		mux.HandleFunc(path+"/{$}", fn)
	}
	mux.HandleFunc("/healthz", Healthz)
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
