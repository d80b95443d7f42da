package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadSystemPrompt reads <dir>/<name>.system.txt. It returns def when dir is
// empty or the file is missing or blank.
func LoadSystemPrompt(dir, name, def string) string {
	return loadPrompt(dir, name, "system", def)
}

// SaveSystemPrompt writes text to <dir>/<name>.system.txt using a temp file
// and rename, and returns the final path.
func SaveSystemPrompt(dir, name, text string) (string, error) {
	return savePrompt(dir, name, "system", text)
}

func promptPath(dir, name, tp string) string {
	return filepath.Join(dir, name+"."+tp+".txt")
}

func loadPrompt(dir, name, tp, def string) string {
	if strings.TrimSpace(dir) == "" {
		return def
	}
	if b, err := os.ReadFile(promptPath(dir, name, tp)); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s
		}
	}
	return def
}

func savePrompt(dir, name, tp, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("make dir: %w", err)
	}
	dst := promptPath(dir, name, tp)
	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write temp: %w", err)
	}
	_ = tmp.Chmod(0o644)
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename: %w", err)
	}
	return dst, nil
}
