// Package document runs the generate, persist, compile and serve pipeline
// over the single document slot.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"latex-proxy/api/internal/imaging"
	"latex-proxy/api/internal/latex"
	"latex-proxy/api/internal/llm"
	"latex-proxy/api/internal/logging"
	"latex-proxy/api/internal/util"
)

type EngineResolver interface {
	GetEngine(llmName string) (llm.Engine, error)
}

type Compiler interface {
	Compile(ctx context.Context) (latex.Result, error)
}

// Slot is the guarded single-document store.
type Slot interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
	WriteSource(text string) error
	ReadSource() (string, error)
	ReadArtifact() ([]byte, error)
	ReadLog() (string, error)
	WriteDebugImage(ext string, data []byte) error
}

type Options struct {
	MaxTokens       int
	ProviderTimeout time.Duration
	SaveDebugImage  bool
	PromptDir       string
}

type Service struct {
	engines  EngineResolver
	slot     Slot
	compiler Compiler
	logger   *zap.Logger
	opts     Options
}

func NewService(engines EngineResolver, slot Slot, compiler Compiler, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4000
	}
	return &Service{engines: engines, slot: slot, compiler: compiler, logger: logger, opts: opts}
}

// Generate asks the provider for a document described by req.Prompt, then
// stores and compiles it. The returned Result is always filled in; err tells
// the caller what went wrong.
func (s *Service) Generate(ctx context.Context, req GenerationRequest) (Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return failed("Failed to generate LaTeX: "+ErrEmptyPrompt.Error(), ""), ErrEmptyPrompt
	}
	system := textSystemPrompt(s.opts.PromptDir, req.documentType(), req.complexity())

	code, err := s.generate(ctx, req.LLMName, llm.Request{
		System:    system,
		Text:      req.Prompt,
		MaxTokens: s.opts.MaxTokens,
	})
	if err != nil {
		return failed("Failed to generate LaTeX: "+logging.Redact(err.Error()), ""), err
	}
	return s.storeAndCompile(ctx, code, "LaTeX generated and compiled successfully")
}

// ProcessDrawing interprets an engineering sketch or handwritten math image.
func (s *Service) ProcessDrawing(ctx context.Context, req DrawingRequest) (Result, error) {
	raw, hint, err := util.DecodeBase64MaybeDataURL(req.ImageData)
	if err != nil || len(raw) == 0 {
		if err == nil {
			err = util.ErrEmptyPayload
		}
		err = fmt.Errorf("%w: %w", ErrBadImage, err)
		return failed("Failed to process drawing: "+err.Error(), ""), err
	}
	img, err := imaging.Normalize(raw)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrBadImage, err)
		return failed("Failed to process drawing: "+err.Error(), ""), err
	}
	if s.opts.SaveDebugImage {
		if werr := s.slot.WriteDebugImage(img.Ext, img.Data); werr != nil {
			s.logger.Warn("save debug image", zap.Error(werr))
		}
	}

	mode := normalizeMode(req.DrawingMode)
	s.logger.Debug("drawing received",
		zap.String("mode", mode),
		zap.String("mime", img.MIME),
		zap.String("declared_mime", hint),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))

	code, err := s.generate(ctx, req.LLMName, llm.Request{
		System:    drawingSystemPrompt(s.opts.PromptDir, mode),
		Text:      drawingUserText(mode, req.Description),
		Image:     img.Data,
		ImageMIME: img.MIME,
		MaxTokens: s.opts.MaxTokens,
	})
	if err != nil {
		return failed("Failed to process drawing: "+logging.Redact(err.Error()), ""), err
	}
	return s.storeAndCompile(ctx, code, "Drawing converted and compiled successfully")
}

// Update replaces the stored source with user-edited text. It does not compile.
func (s *Service) Update(text string) error {
	code := latex.Sanitize(text)
	s.slot.Lock()
	defer s.slot.Unlock()
	return s.slot.WriteSource(code)
}

// Compile builds the PDF from whatever source is currently stored. Like
// storeAndCompile it ignores caller cancellation, since the old artifact is
// removed before the run.
func (s *Service) Compile(ctx context.Context) (latex.Result, error) {
	s.slot.Lock()
	defer s.slot.Unlock()
	return s.compiler.Compile(context.WithoutCancel(ctx))
}

func (s *Service) Source() (string, error) {
	s.slot.RLock()
	defer s.slot.RUnlock()
	return s.slot.ReadSource()
}

// Artifact returns the current PDF bytes, read at call time.
func (s *Service) Artifact() ([]byte, error) {
	s.slot.RLock()
	defer s.slot.RUnlock()
	return s.slot.ReadArtifact()
}

func (s *Service) CompileLog() (string, error) {
	s.slot.RLock()
	defer s.slot.RUnlock()
	return s.slot.ReadLog()
}

// generate calls the provider under the configured timeout and cleans up its
// output. The slot is not touched here, so a provider failure leaves the
// stored source as it was.
func (s *Service) generate(ctx context.Context, llmName string, req llm.Request) (string, error) {
	eng, err := s.engines.GetEngine(llmName)
	if err != nil {
		return "", err
	}
	if s.opts.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ProviderTimeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := eng.Generate(ctx, req)
	if err != nil {
		err = llm.Wrap(eng.Name(), err)
		s.logger.Warn("provider call failed",
			zap.String("engine", eng.Name()),
			zap.String("model", eng.GetModel()),
			zap.Duration("took", time.Since(start)),
			logging.RedactedError(err))
		return "", err
	}
	code := latex.Sanitize(util.StripCodeFences(raw))
	if code == "" {
		return "", llm.ErrEmptyResponse
	}
	s.logger.Info("provider call done",
		zap.String("engine", eng.Name()),
		zap.String("model", eng.GetModel()),
		zap.Bool("image", req.HasImage()),
		zap.Int("chars", len(code)),
		zap.Duration("took", time.Since(start)))
	return code, nil
}

// storeAndCompile writes code and compiles it as one critical section. It
// runs detached from ctx cancellation so a disconnecting client cannot leave
// a written-but-uncompiled slot; the compiler has its own timeout.
func (s *Service) storeAndCompile(ctx context.Context, code, okMessage string) (Result, error) {
	ctx = context.WithoutCancel(ctx)

	s.slot.Lock()
	defer s.slot.Unlock()

	if err := s.slot.WriteSource(code); err != nil {
		s.logger.Error("write source", zap.Error(err))
		return failed("Failed to save LaTeX code: "+err.Error(), code), err
	}

	res, err := s.compiler.Compile(ctx)
	if err != nil {
		out := failed(err.Error(), code)
		var ce *latex.CompileError
		if errors.As(err, &ce) {
			out.Message = ce.Message
			out.Details = ce.Details
			out.Log = ce.Log
		}
		return out, err
	}
	return Result{
		Status:    StatusSuccess,
		Message:   okMessage,
		PDFURL:    res.PDFURL,
		LatexCode: code,
		Pages:     res.Pages,
	}, nil
}

func failed(msg, code string) Result {
	return Result{Status: StatusError, Message: msg, LatexCode: code}
}
