package latex

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"latex-proxy/api/internal/store"
)

type MockRunner struct {
	Stdout string
	Stderr string
	Err    error
	// OnRun runs before returning, e.g. to drop a PDF into dir.
	OnRun func(dir string)

	Calls      int
	CalledWith []string
	Sources    []string
}

func (m *MockRunner) Run(_ context.Context, dir, name string, args ...string) (string, string, error) {
	m.Calls++
	m.CalledWith = append([]string{name}, args...)
	if b, err := os.ReadFile(dir + "/" + store.SourceFile); err == nil {
		m.Sources = append(m.Sources, string(b))
	}
	if m.OnRun != nil {
		m.OnRun(dir)
	}
	return m.Stdout, m.Stderr, m.Err
}

func writePDF(dir string) {
	_ = os.WriteFile(dir+"/"+store.ArtifactFile, []byte("%PDF-1.5\nfake"), 0o644)
}

func newTestCompiler(t *testing.T, runner CommandRunner) (*Compiler, *store.Workspace) {
	t.Helper()
	ws, err := store.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewCompiler(ws, nil)
	c.Runner = runner
	c.Settle = 0
	return c, ws
}

func TestCompiler_NoSourceNeverRuns(t *testing.T) {
	runner := &MockRunner{}
	c, _ := newTestCompiler(t, runner)

	_, err := c.Compile(context.Background())
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("got %v, want ErrSourceNotFound", err)
	}
	if runner.Calls != 0 {
		t.Errorf("runner called %d times, want 0", runner.Calls)
	}
}

func TestCompiler_Compile(t *testing.T) {
	tests := []struct {
		name        string
		runner      *MockRunner
		wantKind    error
		wantMessage string
		wantDetails string
		wantLog     string
	}{
		{
			name:   "pdf produced",
			runner: &MockRunner{Stdout: "Output written on latex.pdf", OnRun: writePDF},
		},
		{
			name:        "clean exit without pdf",
			runner:      &MockRunner{Stdout: "! Undefined control sequence."},
			wantKind:    ErrOutputMissing,
			wantMessage: "PDF file not found after compilation",
			wantLog:     "! Undefined control sequence.",
		},
		{
			name:        "binary missing",
			runner:      &MockRunner{Err: exec.ErrNotFound},
			wantKind:    ErrCompilerProcess,
			wantMessage: "Compilation failed",
			wantDetails: exec.ErrNotFound.Error(),
		},
		{
			name:        "process error with stderr",
			runner:      &MockRunner{Stderr: "segfault", Err: errors.New("signal: segmentation fault")},
			wantKind:    ErrCompilerProcess,
			wantMessage: "Compilation failed",
			wantDetails: "segfault",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ws := newTestCompiler(t, tt.runner)
			if err := ws.WriteSource("\\documentclass{article}"); err != nil {
				t.Fatal(err)
			}

			res, err := c.Compile(context.Background())

			wantArgs := []string{"pdflatex", "-interaction=nonstopmode", "-halt-on-error", "latex.tex"}
			if strings.Join(tt.runner.CalledWith, " ") != strings.Join(wantArgs, " ") {
				t.Errorf("called with %v, want %v", tt.runner.CalledWith, wantArgs)
			}

			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.PDFURL != PDFURL {
					t.Errorf("PDFURL = %q", res.PDFURL)
				}
				return
			}

			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("got %v, want %v", err, tt.wantKind)
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("error %T is not *CompileError", err)
			}
			if ce.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", ce.Message, tt.wantMessage)
			}
			if ce.Details != tt.wantDetails {
				t.Errorf("Details = %q, want %q", ce.Details, tt.wantDetails)
			}
			if ce.Log != tt.wantLog {
				t.Errorf("Log = %q, want %q", ce.Log, tt.wantLog)
			}
			if ws.ArtifactExists() {
				t.Error("no artifact should exist after a failed compile")
			}
		})
	}
}

func TestCompiler_WritesLog(t *testing.T) {
	c, ws := newTestCompiler(t, &MockRunner{Stdout: "out", Stderr: "err", OnRun: writePDF})
	_ = ws.WriteSource("x")
	if _, err := c.Compile(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, err := ws.ReadLog()
	if err != nil {
		t.Fatal(err)
	}
	if got != "out\nerr" {
		t.Errorf("log = %q, want %q", got, "out\nerr")
	}
}

func TestCompiler_FailureRemovesPreviousArtifact(t *testing.T) {
	runner := &MockRunner{OnRun: writePDF}
	c, ws := newTestCompiler(t, runner)
	_ = ws.WriteSource("good")
	if _, err := c.Compile(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !ws.ArtifactExists() {
		t.Fatal("expected artifact after first compile")
	}

	runner.OnRun = nil
	_ = ws.WriteSource("bad")
	if _, err := c.Compile(context.Background()); !errors.Is(err, ErrOutputMissing) {
		t.Fatalf("got %v, want ErrOutputMissing", err)
	}
	if _, err := ws.ReadArtifact(); !errors.Is(err, store.ErrArtifactNotFound) {
		t.Errorf("stale artifact served: %v", err)
	}
}

type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, _, _ string, _ ...string) (string, string, error) {
	<-ctx.Done()
	return "", "", ctx.Err()
}

func TestCompiler_Timeout(t *testing.T) {
	c, ws := newTestCompiler(t, blockingRunner{})
	c.Timeout = 20 * time.Millisecond
	_ = ws.WriteSource("x")

	_, err := c.Compile(context.Background())
	if !errors.Is(err, ErrCompilerProcess) {
		t.Fatalf("got %v, want ErrCompilerProcess", err)
	}
}

func TestProcessFailure_ExitCodeIsNotProcessError(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	_, _, err := (&ExecRunner{}).Run(context.Background(), t.TempDir(), "sh", "-c", "exit 1")
	if err == nil {
		t.Fatal("expected exit error")
	}
	if got := processFailure(context.Background(), err); got != nil {
		t.Errorf("processFailure(exit 1) = %v, want nil", got)
	}
}
