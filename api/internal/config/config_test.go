package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HOST", "PORT", "WORKDIR", "DEV_MODE", "LOG_LEVEL", "LOG_FILE", "CONFIG_FILE",
		"LLM_PROVIDER", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "GEMINI_API_KEY", "GEMINI_MODEL",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "PROMPT_DIR", "LLM_MAX_TOKENS",
		"PROVIDER_TIMEOUT", "LATEX_COMMAND", "COMPILE_TIMEOUT", "COMPILE_SETTLE",
		"SAVE_DEBUG_IMAGE", "CORS_ORIGINS", "TELEGRAM_BOT_TOKEN",
		"DEEPSEEK_API_KEY", "DEEPSEEK_MODEL", "DEEPSEEK_BASE_URL",
	} {
		t.Setenv(k, "")
	}
	// keep a stray .env in the package dir out of the picture
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != "127.0.0.1:8000" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.LLMProvider != "anthropic" || cfg.MaxTokens != 4000 {
		t.Errorf("provider defaults = %q %d", cfg.LLMProvider, cfg.MaxTokens)
	}
	if cfg.CompileSettle != 2*time.Second || cfg.CompileTimeout != 60*time.Second {
		t.Errorf("compile defaults = %v %v", cfg.CompileSettle, cfg.CompileTimeout)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Validate without key: got %v, want ErrMissingKey", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
port: "9000"
workdir: /tmp/docs
llm:
  provider: gemini
  timeout: 30s
  gemini:
    api_key: file-key
    model: gemini-pro
latex:
  command: lualatex
  settle: 0s
  save_debug_image: false
cors_origins:
  - http://example.test
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_MODEL", "gemini-env")
	t.Setenv("COMPILE_TIMEOUT", "5s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" || cfg.WorkDir != "/tmp/docs" {
		t.Errorf("server = %q %q", cfg.Port, cfg.WorkDir)
	}
	if cfg.LLMProvider != "gemini" || cfg.Gemini.APIKey != "file-key" {
		t.Errorf("llm = %q %q", cfg.LLMProvider, cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-env" {
		t.Errorf("env should override file: model = %q", cfg.Gemini.Model)
	}
	if cfg.ProviderTimeout != 30*time.Second || cfg.CompileTimeout != 5*time.Second || cfg.CompileSettle != 0 {
		t.Errorf("durations = %v %v %v", cfg.ProviderTimeout, cfg.CompileTimeout, cfg.CompileSettle)
	}
	if cfg.LatexCommand != "lualatex" || cfg.SaveDebugImage {
		t.Errorf("latex = %q %v", cfg.LatexCommand, cfg.SaveDebugImage)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://example.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_EnvErrors(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"LLM_MAX_TOKENS", "lots"},
		{"PROVIDER_TIMEOUT", "soon"},
		{"COMPILE_SETTLE", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(""); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_CORSFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.LLMProvider = "llama"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error")
	}
}

func TestLoad_DeepSeek(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "DeepSeek")
	t.Setenv("DEEPSEEK_API_KEY", "sk-ds")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLMProvider != "deepseek" || cfg.DeepSeek.Model != "deepseek-chat" || cfg.DeepSeek.BaseURL == "" {
		t.Errorf("deepseek = %q %+v", cfg.LLMProvider, cfg.DeepSeek)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
