package document

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSavePrompt(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, Options{PromptDir: dir})

	res, err := f.svc.SavePrompt(PromptUpdate{Name: "Generate", Text: "Only output {document_type} at {complexity}."})
	if err != nil {
		t.Fatalf("SavePrompt: %v", err)
	}
	if !res.OK || res.Name != "generate" || !strings.HasSuffix(res.Path, "generate.system.txt") {
		t.Errorf("result = %+v", res)
	}

	if _, err := f.svc.Generate(context.Background(), GenerationRequest{Prompt: "x", DocumentType: "memo"}); err != nil {
		t.Fatal(err)
	}
	if got := f.eng.last().System; got != "Only output memo at standard." {
		t.Errorf("override not used, system = %q", got)
	}
}

func TestSavePrompt_Rejects(t *testing.T) {
	tests := []struct {
		name string
		dir  bool
		upd  PromptUpdate
		want error
	}{
		{"no dir", false, PromptUpdate{Name: "math", Text: "x"}, ErrPromptDirUnset},
		{"unknown name", true, PromptUpdate{Name: "detect", Text: "x"}, ErrBadPrompt},
		{"traversal", true, PromptUpdate{Name: "../math", Text: "x"}, ErrBadPrompt},
		{"empty text", true, PromptUpdate{Name: "math", Text: "  "}, ErrBadPrompt},
		{"too large", true, PromptUpdate{Name: "math", Text: strings.Repeat("a", MaxPromptSize+1)}, ErrBadPrompt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{}
			if tt.dir {
				opts.PromptDir = t.TempDir()
			}
			f := newFixture(t, opts)
			if _, err := f.svc.SavePrompt(tt.upd); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
