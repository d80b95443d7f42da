// Package llm defines the provider contract: a system instruction plus a user
// turn (text, optionally an image) in, generated text out.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrProvider      = errors.New("provider call failed")
	ErrEmptyResponse = fmt.Errorf("%w: empty response", ErrProvider)
	ErrUnknownEngine = errors.New("unknown llm_name")
)

type Request struct {
	System    string
	Text      string
	Image     []byte
	ImageMIME string
	MaxTokens int
}

func (r Request) HasImage() bool { return len(r.Image) > 0 }

type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Engines is the set of configured providers. Nil fields are not configured.
type Engines struct {
	Default   string
	Anthropic Engine
	Gemini    Engine
	OpenAI    Engine
	DeepSeek  Engine
}

// GetEngine resolves a request's llm_name; empty means the default provider.
func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = strings.ToLower(e.Default)
	}
	var eng Engine
	switch name {
	case "anthropic", "claude":
		eng = e.Anthropic
	case "gemini":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	case "deepseek":
		eng = e.DeepSeek
	default:
		return nil, fmt.Errorf("%w %q; use one of %s", ErrUnknownEngine, name, strings.Join(e.Available(), ", "))
	}
	if eng == nil {
		return nil, fmt.Errorf("%w %q: not configured", ErrUnknownEngine, name)
	}
	return eng, nil
}

// Available lists the configured provider names.
func (e *Engines) Available() []string {
	var out []string
	if e.Anthropic != nil {
		out = append(out, "anthropic")
	}
	if e.Gemini != nil {
		out = append(out, "gemini")
	}
	if e.OpenAI != nil {
		out = append(out, "openai")
	}
	if e.DeepSeek != nil {
		out = append(out, "deepseek")
	}
	sort.Strings(out)
	return out
}

// Wrap marks err as a provider failure, keeping the original chain.
func Wrap(engine string, err error) error {
	if err == nil || errors.Is(err, ErrProvider) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrProvider, engine, err)
}
