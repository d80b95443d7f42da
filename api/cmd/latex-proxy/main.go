package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"latex-proxy/api/internal/config"
	"latex-proxy/api/internal/document"
	"latex-proxy/api/internal/handle"
	"latex-proxy/api/internal/httpserver"
	"latex-proxy/api/internal/latex"
	"latex-proxy/api/internal/llm"
	"latex-proxy/api/internal/llm/anthropic"
	"latex-proxy/api/internal/llm/deepseek"
	"latex-proxy/api/internal/llm/gemini"
	"latex-proxy/api/internal/llm/openai"
	"latex-proxy/api/internal/logging"
	"latex-proxy/api/internal/store"
	"latex-proxy/api/internal/telegram"
)

type flags struct {
	config string
	addr   string
	dev    bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("latex-proxy", flag.ContinueOnError)
	fs.StringVarP(&f.config, "config", "c", "", "YAML config file (default $CONFIG_FILE)")
	fs.StringVar(&f.addr, "addr", "", "listen address host:port, overrides HOST and PORT")
	fs.BoolVar(&f.dev, "dev", false, "human-readable debug logging")
	if err := fs.Parse(args[1:]); err != nil {
		return flags{}, err
	}
	return f, nil
}

func main() {
	f, err := parseFlags(os.Args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if f.dev {
		cfg.DevMode = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Development: cfg.DevMode, Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	_, _ = maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf))

	ws, err := store.NewWorkspace(cfg.WorkDir)
	if err != nil {
		return err
	}
	compiler := latex.NewCompiler(ws, logger.Named("latex"))
	compiler.Command = cfg.LatexCommand
	compiler.Timeout = cfg.CompileTimeout
	compiler.Settle = cfg.CompileSettle

	engines := buildEngines(cfg)
	logger.Info("providers configured",
		zap.Strings("available", engines.Available()),
		zap.String("default", engines.Default))

	docs := document.NewService(engines, ws, compiler, logger.Named("document"), document.Options{
		MaxTokens:       cfg.MaxTokens,
		ProviderTimeout: cfg.ProviderTimeout,
		SaveDebugImage:  cfg.SaveDebugImage,
		PromptDir:       cfg.PromptDir,
	})

	mux := http.NewServeMux()
	handle.New(docs, logger.Named("http")).Routes(mux)

	addr := cfg.Addr()
	if f.addr != "" {
		addr = f.addr
	}
	srv := httpserver.New(addr, handle.Chain(mux, logger.Named("http"), cfg.CORSOrigins))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var router *telegram.Router
	var bot *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		bot, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			return errors.New("telegram: " + logging.Redact(err.Error()))
		}
		router = &telegram.Router{
			Bot:        bot,
			Docs:       docs,
			Engines:    engines,
			EngManager: llm.NewManager(defaultEngine(engines)),
			Logger:     logger.Named("telegram"),
		}
		logger.Info("telegram bot ready", zap.String("username", bot.Self.UserName))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.StartHTTP(ctx, srv, logger)
	})
	if router != nil {
		g.Go(func() error {
			telegram.RunPolling(ctx, bot, logger.Named("telegram"), func(u tgbotapi.Update) {
				router.HandleUpdate(ctx, u)
			})
			router.Wait()
			return nil
		})
	}

	logger.Info("latex-proxy started",
		zap.String("addr", addr),
		zap.String("workdir", ws.Dir()),
		zap.String("latex_command", compiler.Command))
	return g.Wait()
}

// buildEngines constructs every provider that has an API key.
func buildEngines(cfg *config.Config) *llm.Engines {
	e := &llm.Engines{Default: cfg.LLMProvider}
	if cfg.Anthropic.APIKey != "" {
		e.Anthropic = anthropic.New(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	}
	if cfg.Gemini.APIKey != "" {
		e.Gemini = gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model)
	}
	if cfg.OpenAI.APIKey != "" {
		e.OpenAI = openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	}
	if cfg.DeepSeek.APIKey != "" {
		e.DeepSeek = deepseek.New(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model, cfg.DeepSeek.BaseURL)
	}
	return e
}

func defaultEngine(e *llm.Engines) llm.Engine {
	eng, err := e.GetEngine("")
	if err != nil {
		return nil
	}
	return eng
}
