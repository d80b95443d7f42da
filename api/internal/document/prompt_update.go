package document

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"latex-proxy/api/internal/util"
)

// MaxPromptSize bounds an uploaded system prompt.
const MaxPromptSize = 256 << 10

var (
	ErrPromptDirUnset = errors.New("prompt directory is not configured")
	ErrBadPrompt      = errors.New("invalid prompt update")
)

var promptNameRe = regexp.MustCompile(`^[a-z]+$`)

// PromptNames are the instructions that can be overridden.
var PromptNames = []string{"generate", ModeEngineering, ModeMath}

type PromptUpdate struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type PromptUpdateResult struct {
	OK      bool   `json:"ok"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Size    int    `json:"size"`
	Updated string `json:"updated_at"`
}

func (u PromptUpdate) Validate() error {
	name := strings.ToLower(strings.TrimSpace(u.Name))
	if !promptNameRe.MatchString(name) || !knownPrompt(name) {
		return fmt.Errorf("%w: name must be one of %s", ErrBadPrompt, strings.Join(PromptNames, ", "))
	}
	if strings.TrimSpace(u.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrBadPrompt)
	}
	if len(u.Text) > MaxPromptSize {
		return fmt.Errorf("%w: text too large (max %d KiB)", ErrBadPrompt, MaxPromptSize>>10)
	}
	return nil
}

func knownPrompt(name string) bool {
	for _, n := range PromptNames {
		if n == name {
			return true
		}
	}
	return false
}

// SavePrompt stores an override for one of the built-in instructions. It is
// picked up by the next generation request.
func (s *Service) SavePrompt(u PromptUpdate) (PromptUpdateResult, error) {
	if strings.TrimSpace(s.opts.PromptDir) == "" {
		return PromptUpdateResult{}, ErrPromptDirUnset
	}
	if err := u.Validate(); err != nil {
		return PromptUpdateResult{}, err
	}
	name := strings.ToLower(strings.TrimSpace(u.Name))
	path, err := util.SaveSystemPrompt(s.opts.PromptDir, name, u.Text)
	if err != nil {
		return PromptUpdateResult{}, err
	}
	s.logger.Info("system prompt updated", zap.String("name", name), zap.Int("size", len(u.Text)))
	return PromptUpdateResult{
		OK:      true,
		Name:    name,
		Path:    path,
		Size:    len(u.Text),
		Updated: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
