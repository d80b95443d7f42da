package telegram

import "testing"

func TestParseCaption(t *testing.T) {
	tests := []struct {
		caption, mode, description string
	}{
		{"", "", ""},
		{"math", "math", ""},
		{"/math lecture 3 notes", "math", "lecture 3 notes"},
		{"Maths", "math", ""},
		{"engineering gearbox housing", "engineering", "gearbox housing"},
		{"a bracket with two holes", "", "a bracket with two holes"},
		{"  mathematical proof  ", "", "mathematical proof"},
	}
	for _, tt := range tests {
		mode, desc := parseCaption(tt.caption)
		if mode != tt.mode || desc != tt.description {
			t.Errorf("parseCaption(%q) = %q, %q; want %q, %q", tt.caption, mode, desc, tt.mode, tt.description)
		}
	}
}

func TestMakeEngineKeyboard(t *testing.T) {
	if _, ok := makeEngineKeyboard(nil); ok {
		t.Error("empty list should not produce a keyboard")
	}
	kb, ok := makeEngineKeyboard([]string{"anthropic", "gemini"})
	if !ok || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("keyboard = %+v", kb)
	}
	if d := kb.InlineKeyboard[0][1].CallbackData; d == nil || *d != cbEnginePrefix+"gemini" {
		t.Errorf("callback data = %v", d)
	}
}
