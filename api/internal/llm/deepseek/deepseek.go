// Package deepseek talks to DeepSeek's OpenAI-compatible chat API. DeepSeek
// chat models do not accept images, so only the text path can use it.
package deepseek

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/option"

	"latex-proxy/api/internal/llm"
	"latex-proxy/api/internal/llm/openai"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"
)

var ErrImageUnsupported = errors.New("DeepSeek chat API does not accept images; use anthropic, gemini or openai for drawings")

type Engine struct {
	*openai.Engine
}

func New(apiKey, model, baseURL string, opts ...option.RequestOption) *Engine {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	e := openai.New(apiKey, model, baseURL, opts...)
	e.Label = "deepseek"
	return &Engine{Engine: e}
}

func (e *Engine) Generate(ctx context.Context, in llm.Request) (string, error) {
	if in.HasImage() {
		return "", llm.Wrap(e.Name(), ErrImageUnsupported)
	}
	return e.Engine.Generate(ctx, in)
}
