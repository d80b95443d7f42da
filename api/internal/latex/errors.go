package latex

import (
	"errors"

	"latex-proxy/api/internal/store"
)

var (
	ErrSourceNotFound  = store.ErrSourceNotFound
	ErrCompilerProcess = errors.New("compiler process failed")
	ErrOutputMissing   = errors.New("compiler produced no PDF")
)

// CompileError carries what the caller needs to show: a short message plus
// either the process error detail or the compiler's stdout.
type CompileError struct {
	Kind    error
	Message string
	Details string
	Log     string
}

func (e *CompileError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *CompileError) Unwrap() error { return e.Kind }
