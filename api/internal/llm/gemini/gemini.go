package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"latex-proxy/api/internal/llm"
	"latex-proxy/api/internal/util"
)

type Engine struct {
	APIKey string
	opts   []option.ClientOption

	mu    sync.RWMutex
	model string
}

func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
		opts:   opts,
	}
}

func (e *Engine) Name() string     { return "gemini" }
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
		return "", llm.Wrap(e.Name(), errors.New("GEMINI_API_KEY is empty"))
	}
	model := e.GetModel()
	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", llm.Wrap(e.Name(), err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(model)
	if m == nil {
		return "", llm.Wrap(e.Name(), fmt.Errorf("model %q is nil", model))
	}
	if in.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(in.MaxTokens))
	}
	if s := strings.TrimSpace(in.System); s != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s)}}
	}

	resp, err := m.GenerateContent(ctx, userParts(in)...)
	if err != nil {
		return "", llm.Wrap(e.Name(), err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", llm.ErrEmptyResponse
	}
	return txt, nil
}

// userParts puts the image first, then the instruction text.
func userParts(in llm.Request) []genai.Part {
	var parts []genai.Part
	if in.HasImage() {
		parts = append(parts, genai.Blob{
			MIMEType: util.PickMIME(in.ImageMIME, "", in.Image),
			Data:     in.Image,
		})
	}
	if t := strings.TrimSpace(in.Text); t != "" || len(parts) == 0 {
		parts = append(parts, genai.Text(in.Text))
	}
	return parts
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
