package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

var ErrMissingKey = errors.New("missing provider API key")

type Config struct {
	Host    string
	Port    string
	WorkDir string

	DevMode  bool
	LogLevel string
	LogFile  string

	LLMProvider     string
	Anthropic       Provider
	Gemini          Provider
	OpenAI          Provider
	DeepSeek        Provider
	MaxTokens       int
	ProviderTimeout time.Duration
	PromptDir       string

	LatexCommand   string
	CompileTimeout time.Duration
	CompileSettle  time.Duration
	SaveDebugImage bool

	CORSOrigins []string

	TelegramBotToken string
}

type Provider struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Addr is the listen address.
func (c *Config) Addr() string { return c.Host + ":" + c.Port }

// fileConfig mirrors Config for the optional YAML file. Durations are kept as
// strings ("90s") and parsed with time.ParseDuration.
type fileConfig struct {
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	WorkDir string `yaml:"workdir"`
	Log     struct {
		Dev   *bool  `yaml:"dev"`
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	LLM struct {
		Provider  string       `yaml:"provider"`
		MaxTokens int          `yaml:"max_tokens"`
		Timeout   string       `yaml:"timeout"`
		PromptDir string       `yaml:"prompt_dir"`
		Anthropic fileProvider `yaml:"anthropic"`
		Gemini    fileProvider `yaml:"gemini"`
		OpenAI    fileProvider `yaml:"openai"`
		DeepSeek  fileProvider `yaml:"deepseek"`
	} `yaml:"llm"`
	Latex struct {
		Command        string `yaml:"command"`
		Timeout        string `yaml:"timeout"`
		Settle         string `yaml:"settle"`
		SaveDebugImage *bool  `yaml:"save_debug_image"`
	} `yaml:"latex"`
	CORSOrigins []string `yaml:"cors_origins"`
	Telegram    struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`
}

type fileProvider struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

func Default() *Config {
	return &Config{
		Host:    "127.0.0.1",
		Port:    "8000",
		WorkDir: ".",

		LogLevel: "",
		LogFile:  "latex-proxy.log",

		LLMProvider:     "anthropic",
		Anthropic:       Provider{Model: "claude-3-7-sonnet-20250219"},
		Gemini:          Provider{Model: "gemini-2.5-flash"},
		OpenAI:          Provider{Model: "gpt-4o-mini"},
		DeepSeek:        Provider{Model: "deepseek-chat", BaseURL: "https://api.deepseek.com"},
		MaxTokens:       4000,
		ProviderTimeout: 120 * time.Second,

		LatexCommand:   "pdflatex",
		CompileTimeout: 60 * time.Second,
		CompileSettle:  2 * time.Second,
		SaveDebugImage: true,

		CORSOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then environment variables. A .env file in the working directory is
// loaded into the environment first; variables already set win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setStr(&c.Host, f.Host)
	setStr(&c.Port, f.Port)
	setStr(&c.WorkDir, f.WorkDir)
	if f.Log.Dev != nil {
		c.DevMode = *f.Log.Dev
	}
	setStr(&c.LogLevel, f.Log.Level)
	setStr(&c.LogFile, f.Log.File)

	setStr(&c.LLMProvider, f.LLM.Provider)
	if f.LLM.MaxTokens > 0 {
		c.MaxTokens = f.LLM.MaxTokens
	}
	if err := setDur(&c.ProviderTimeout, f.LLM.Timeout, "llm.timeout"); err != nil {
		return err
	}
	setStr(&c.PromptDir, f.LLM.PromptDir)
	f.LLM.Anthropic.apply(&c.Anthropic)
	f.LLM.Gemini.apply(&c.Gemini)
	f.LLM.OpenAI.apply(&c.OpenAI)
	f.LLM.DeepSeek.apply(&c.DeepSeek)

	setStr(&c.LatexCommand, f.Latex.Command)
	if err := setDur(&c.CompileTimeout, f.Latex.Timeout, "latex.timeout"); err != nil {
		return err
	}
	if err := setDur(&c.CompileSettle, f.Latex.Settle, "latex.settle"); err != nil {
		return err
	}
	if f.Latex.SaveDebugImage != nil {
		c.SaveDebugImage = *f.Latex.SaveDebugImage
	}
	if len(f.CORSOrigins) > 0 {
		c.CORSOrigins = f.CORSOrigins
	}
	setStr(&c.TelegramBotToken, f.Telegram.Token)
	return nil
}

func (p fileProvider) apply(dst *Provider) {
	setStr(&dst.APIKey, p.APIKey)
	setStr(&dst.Model, p.Model)
	setStr(&dst.BaseURL, p.BaseURL)
}

func (c *Config) applyEnv() error {
	c.Host = getEnv("HOST", c.Host)
	c.Port = getEnv("PORT", c.Port)
	c.WorkDir = getEnv("WORKDIR", c.WorkDir)
	c.DevMode = getBool("DEV_MODE", c.DevMode)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)

	c.LLMProvider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLMProvider))
	c.Anthropic.APIKey = getEnv("ANTHROPIC_API_KEY", c.Anthropic.APIKey)
	c.Anthropic.Model = getEnv("ANTHROPIC_MODEL", c.Anthropic.Model)
	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)
	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = getEnv("OPENAI_MODEL", c.OpenAI.Model)
	c.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.DeepSeek.APIKey = getEnv("DEEPSEEK_API_KEY", c.DeepSeek.APIKey)
	c.DeepSeek.Model = getEnv("DEEPSEEK_MODEL", c.DeepSeek.Model)
	c.DeepSeek.BaseURL = getEnv("DEEPSEEK_BASE_URL", c.DeepSeek.BaseURL)
	c.PromptDir = getEnv("PROMPT_DIR", c.PromptDir)

	if v := getEnv("LLM_MAX_TOKENS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("LLM_MAX_TOKENS: bad value %q", v)
		}
		c.MaxTokens = n
	}
	if err := setDur(&c.ProviderTimeout, getEnv("PROVIDER_TIMEOUT", ""), "PROVIDER_TIMEOUT"); err != nil {
		return err
	}

	c.LatexCommand = getEnv("LATEX_COMMAND", c.LatexCommand)
	if err := setDur(&c.CompileTimeout, getEnv("COMPILE_TIMEOUT", ""), "COMPILE_TIMEOUT"); err != nil {
		return err
	}
	if err := setDur(&c.CompileSettle, getEnv("COMPILE_SETTLE", ""), "COMPILE_SETTLE"); err != nil {
		return err
	}
	c.SaveDebugImage = getBool("SAVE_DEBUG_IMAGE", c.SaveDebugImage)

	if v := getEnv("CORS_ORIGINS", ""); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	return nil
}

// Validate checks that the default provider can be constructed.
func (c *Config) Validate() error {
	var key string
	switch c.LLMProvider {
	case "anthropic", "claude":
		key = c.Anthropic.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openai", "gpt":
		key = c.OpenAI.APIKey
	case "deepseek":
		key = c.DeepSeek.APIKey
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q; use anthropic, gemini, openai or deepseek", c.LLMProvider)
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w for %s", ErrMissingKey, c.LLMProvider)
	}
	if c.Port == "" {
		return errors.New("port is empty")
	}
	return nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDur(dst *time.Duration, v, name string) error {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return fmt.Errorf("%s: negative duration %s", name, v)
	}
	*dst = d
	return nil
}
