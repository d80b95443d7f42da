package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"latex-proxy/api/internal/llm"
	"latex-proxy/api/internal/util"
)

const defaultMaxTokens = 4000

// Engine talks to the Messages API. It is the default provider.
type Engine struct {
	APIKey string
	opts   []option.RequestOption

	mu    sync.RWMutex
	model string
}

func New(apiKey, model string, opts ...option.RequestOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
		opts:   opts,
	}
}

func (e *Engine) Name() string     { return "anthropic" }
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
		return "", llm.Wrap(e.Name(), errors.New("ANTHROPIC_API_KEY is empty"))
	}
	model := e.GetModel()
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(e.APIKey)}, e.opts...)...)

	maxTokens := int64(in.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(userBlocks(in)...)},
	}
	if s := strings.TrimSpace(in.System); s != "" {
		params.System = []anthropic.TextBlockParam{{Text: s}}
	}

	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", llm.Wrap(e.Name(), err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", llm.ErrEmptyResponse
}

// userBlocks carries the image (base64 with explicit media type) before the text.
func userBlocks(in llm.Request) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	if in.HasImage() {
		mime := util.PickMIME(in.ImageMIME, "", in.Image)
		blocks = append(blocks, anthropic.NewImageBlockBase64(mime, base64.StdEncoding.EncodeToString(in.Image)))
	}
	if strings.TrimSpace(in.Text) != "" || len(blocks) == 0 {
		blocks = append(blocks, anthropic.NewTextBlock(in.Text))
	}
	return blocks
}
