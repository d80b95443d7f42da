package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"latex-proxy/api/internal/llm"
)

func TestUserParts(t *testing.T) {
	img := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	parts := userParts(llm.Request{Text: "convert", Image: img})
	if len(parts) != 2 {
		t.Fatalf("len(parts) = %d, want 2", len(parts))
	}
	blob, ok := parts[0].(genai.Blob)
	if !ok {
		t.Fatalf("first part is %T, want genai.Blob", parts[0])
	}
	if blob.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q", blob.MIMEType)
	}
	if txt, ok := parts[1].(genai.Text); !ok || string(txt) != "convert" {
		t.Errorf("second part = %#v", parts[1])
	}

	textOnly := userParts(llm.Request{Text: "hello"})
	if len(textOnly) != 1 {
		t.Errorf("text-only parts = %d", len(textOnly))
	}
}

func TestFirstText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Blob{}, genai.Text("\\documentclass{article}")}}},
		},
	}
	if got := firstText(resp); got != "\\documentclass{article}" {
		t.Errorf("firstText = %q", got)
	}
	if got := firstText(nil); got != "" {
		t.Errorf("firstText(nil) = %q", got)
	}
}

func TestGenerate_NoKey(t *testing.T) {
	_, err := New("", "gemini-2.5-flash").Generate(context.Background(), llm.Request{Text: "x"})
	if !errors.Is(err, llm.ErrProvider) {
		t.Errorf("got %v, want ErrProvider", err)
	}
}
