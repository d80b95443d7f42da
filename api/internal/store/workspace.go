// Package store keeps the single document slot on disk: the LaTeX source, the
// compiled PDF, the compiler log and an optional debug copy of the last drawing.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	SourceFile   = "latex.tex"
	ArtifactFile = "latex.pdf"
	LogFile      = "latex_output.log"
	DebugImage   = "drawing"
)

var (
	ErrSourceNotFound   = errors.New("LaTeX file not found")
	ErrArtifactNotFound = errors.New("PDF file not found")
	ErrLogNotFound      = errors.New("compilation log not found")
	ErrPersist          = errors.New("failed to persist file")
)

// Workspace is the document slot. Writers hold Lock for the whole
// write-then-compile sequence; readers of the artifact hold RLock.
type Workspace struct {
	dir string
	mu  sync.RWMutex
}

func NewWorkspace(dir string) (*Workspace, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: make dir %s: %v", ErrPersist, dir, err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Lock()    { w.mu.Lock() }
func (w *Workspace) Unlock()  { w.mu.Unlock() }
func (w *Workspace) RLock()   { w.mu.RLock() }
func (w *Workspace) RUnlock() { w.mu.RUnlock() }

func (w *Workspace) Dir() string          { return w.dir }
func (w *Workspace) SourcePath() string   { return filepath.Join(w.dir, SourceFile) }
func (w *Workspace) ArtifactPath() string { return filepath.Join(w.dir, ArtifactFile) }
func (w *Workspace) LogPath() string      { return filepath.Join(w.dir, LogFile) }

// WriteSource fully replaces the current source document.
func (w *Workspace) WriteSource(text string) error {
	return w.writeAtomic(SourceFile, []byte(text))
}

func (w *Workspace) ReadSource() (string, error) {
	b, err := os.ReadFile(w.SourcePath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrSourceNotFound
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (w *Workspace) SourceExists() bool { return fileExists(w.SourcePath()) }

func (w *Workspace) WriteLog(text string) error {
	return w.writeAtomic(LogFile, []byte(text))
}

func (w *Workspace) ReadLog() (string, error) {
	b, err := os.ReadFile(w.LogPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrLogNotFound
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (w *Workspace) ArtifactExists() bool { return fileExists(w.ArtifactPath()) }

// ReadArtifact checks for the PDF at call time; nothing is cached between compiles.
func (w *Workspace) ReadArtifact() ([]byte, error) {
	b, err := os.ReadFile(w.ArtifactPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// RemoveArtifact deletes the PDF; a missing file is not an error.
func (w *Workspace) RemoveArtifact() error {
	if err := os.Remove(w.ArtifactPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", ErrPersist, ArtifactFile, err)
	}
	return nil
}

// WriteDebugImage stores the last decoded drawing as drawing.<ext>.
func (w *Workspace) WriteDebugImage(ext string, data []byte) error {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" || strings.ContainsAny(ext, "/\\\x00") {
		ext = "bin"
	}
	return w.writeAtomic(DebugImage+"."+ext, data)
}

// writeAtomic writes into a temp file in the same directory, then renames.
func (w *Workspace) writeAtomic(name string, data []byte) error {
	dst := filepath.Join(w.dir, name)
	tmp, err := os.CreateTemp(w.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrPersist, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %v", ErrPersist, name, err)
	}
	_ = tmp.Chmod(0o644)
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %v", ErrPersist, name, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: rename %s: %v", ErrPersist, name, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
