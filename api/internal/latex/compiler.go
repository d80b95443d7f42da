package latex

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultCommand = "pdflatex"
	DefaultTimeout = 60 * time.Second
	DefaultSettle  = 2 * time.Second

	// PDFURL is where the artifact is served from.
	PDFURL = "/latex-pdf/"
)

// Slot is the part of the document workspace the compiler needs.
type Slot interface {
	Dir() string
	SourcePath() string
	ArtifactPath() string
	SourceExists() bool
	ArtifactExists() bool
	RemoveArtifact() error
	WriteLog(text string) error
}

type Result struct {
	Message string `json:"message"`
	PDFURL  string `json:"pdf_url"`
	Pages   int    `json:"pages,omitempty"`
}

// Compiler runs the TeX engine against the slot's source file. Callers must
// hold the slot's write lock for the whole call.
type Compiler struct {
	Runner  CommandRunner
	Slot    Slot
	Command string
	Timeout time.Duration
	// Settle is waited after the process exits, for engines that return
	// before the PDF is flushed.
	Settle time.Duration
	Logger *zap.Logger
}

func NewCompiler(slot Slot, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{
		Runner:  &ExecRunner{},
		Slot:    slot,
		Command: DefaultCommand,
		Timeout: DefaultTimeout,
		Settle:  DefaultSettle,
		Logger:  logger,
	}
}

// Compile produces the PDF. The previous artifact is removed first, so after
// a failed run no PDF is served for source that did not compile.
func (c *Compiler) Compile(ctx context.Context) (Result, error) {
	if !c.Slot.SourceExists() {
		return Result{}, ErrSourceNotFound
	}
	if err := c.Slot.RemoveArtifact(); err != nil {
		return Result{}, err
	}

	command := c.Command
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	start := time.Now()
	stdout, stderr, runErr := c.Runner.Run(ctx, c.Slot.Dir(), command,
		"-interaction=nonstopmode", "-halt-on-error", filepath.Base(c.Slot.SourcePath()))

	if err := c.Slot.WriteLog(stdout + "\n" + stderr); err != nil {
		c.logger().Warn("write compilation log", zap.Error(err))
	}

	if procErr := processFailure(ctx, runErr); procErr != nil {
		details := strings.TrimSpace(stderr)
		if details == "" {
			details = procErr.Error()
		}
		c.logger().Warn("compiler process failed",
			zap.String("command", command),
			zap.Duration("took", time.Since(start)),
			zap.Error(procErr))
		return Result{}, &CompileError{Kind: ErrCompilerProcess, Message: "Compilation failed", Details: details}
	}

	if c.Settle > 0 {
		time.Sleep(c.Settle)
	}

	if !c.Slot.ArtifactExists() {
		c.logger().Info("compiler produced no PDF",
			zap.Duration("took", time.Since(start)),
			zap.NamedError("exit", runErr))
		return Result{}, &CompileError{Kind: ErrOutputMissing, Message: "PDF file not found after compilation", Log: stdout}
	}

	res := Result{Message: "PDF compiled successfully", PDFURL: PDFURL}
	if info, err := InspectPDF(c.Slot.ArtifactPath()); err == nil {
		res.Pages = info.Pages
	} else {
		c.logger().Debug("inspect pdf", zap.Error(err))
	}
	c.logger().Info("pdf compiled", zap.Int("pages", res.Pages), zap.Duration("took", time.Since(start)))
	return res, nil
}

// processFailure reports whether the engine could not run to completion. A
// normal non-zero exit is not one: TeX exits 1 on document errors, and that
// case is judged by whether a PDF appeared.
func processFailure(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("compiler stopped: %w", ctxErr)
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ee.ExitCode() == -1 {
			// killed by a signal
			return err
		}
		return nil
	}
	return err
}

func (c *Compiler) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
