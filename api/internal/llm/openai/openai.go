package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"latex-proxy/api/internal/llm"
	"latex-proxy/api/internal/util"
)

// Engine uses chat completions. BaseURL allows OpenAI-compatible gateways
// (DeepSeek, local servers).
type Engine struct {
	APIKey  string
	BaseURL string
	// Label replaces "openai" as the engine name for compatible gateways.
	Label string
	opts  []option.RequestOption

	mu    sync.RWMutex
	model string
}

func New(apiKey, model, baseURL string, opts ...option.RequestOption) *Engine {
	return &Engine{
		APIKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		BaseURL: strings.TrimSpace(baseURL),
		opts:    opts,
	}
}

func (e *Engine) Name() string {
	if e.Label != "" {
		return e.Label
	}
	return "openai"
}

func (e *Engine) GetModel() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model
}

// SetModel may be called while Generate runs; in-flight calls keep the old model.
func (e *Engine) SetModel(m string) {
	if m = strings.TrimSpace(m); m != "" {
		e.mu.Lock()
		e.model = m
		e.mu.Unlock()
	}
}

func (e *Engine) Generate(ctx context.Context, in llm.Request) (string, error) {
	if e.APIKey == "" {
		return "", llm.Wrap(e.Name(), errors.New("API key is empty"))
	}
	model := e.GetModel()
	opts := []option.RequestOption{option.WithAPIKey(e.APIKey)}
	if e.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(e.BaseURL))
	}
	client := openai.NewClient(append(opts, e.opts...)...)

	var msgs []openai.ChatCompletionMessageParamUnion
	if s := strings.TrimSpace(in.System); s != "" {
		msgs = append(msgs, openai.SystemMessage(s))
	}
	msgs = append(msgs, userMessage(in))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	}
	if in.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(in.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", llm.Wrap(e.Name(), err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func userMessage(in llm.Request) openai.ChatCompletionMessageParamUnion {
	if !in.HasImage() {
		return openai.UserMessage(in.Text)
	}
	mime := util.PickMIME(in.ImageMIME, "", in.Image)
	dataURL := util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(in.Image))
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
	}
	if strings.TrimSpace(in.Text) != "" {
		parts = append(parts, openai.TextContentPart(in.Text))
	}
	return openai.UserMessage(parts)
}
