// Package telegram is a chat front-end over the document service: text
// messages become generation prompts, photos become drawings, and the
// compiled PDF is sent back as a document.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"latex-proxy/api/internal/document"
	"latex-proxy/api/internal/llm"
	"latex-proxy/api/internal/logging"
	"latex-proxy/api/internal/util"
)

const maxMessage = 3900

// Bot is the subset of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Documents interface {
	Generate(ctx context.Context, req document.GenerationRequest) (document.Result, error)
	ProcessDrawing(ctx context.Context, req document.DrawingRequest) (document.Result, error)
	Source() (string, error)
	Artifact() ([]byte, error)
	CompileLog() (string, error)
}

type Router struct {
	Bot        Bot
	Docs       Documents
	Engines    *llm.Engines
	EngManager *llm.Manager
	Logger     *zap.Logger
	HTTPClient *http.Client
	// Debounce is how long an album waits for more photos.
	Debounce time.Duration

	batches sync.Map // key -> *photoBatch
	wg      sync.WaitGroup
}

// HandleUpdate dispatches one update. Generation runs in the background;
// Wait blocks until it finishes.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		r.HandleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(ctx, msg)
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		r.acceptPhoto(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		text := msg.Text
		r.spawn(func() { r.generateFromText(ctx, cid, text) })
	default:
		r.send(cid, "Send a description of the document, or a photo of a drawing.")
	}
}

// Wait blocks until background generations have finished.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) spawn(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "engine":
		r.handleEngineCommand(cid, msg.CommandArguments())
	case "pdf":
		r.sendArtifact(cid, "")
	case "source":
		r.sendSource(cid)
	case "log":
		r.sendLog(cid)
	case "math", "engineering":
		r.send(cid, "Attach a photo and put \"/"+msg.Command()+"\" or \""+msg.Command()+"\" in its caption.")
	default:
		r.send(cid, "Unknown command. /help lists what I can do.")
	}
}

const helpText = `Send me a description of a document and I will write it in LaTeX and compile it.
Send a photo of a sketch or of handwritten math to have it typeset. Start the caption with "math" for handwriting; anything else is treated as an engineering drawing. Several photos sent as an album are joined into one page.

Commands:
/engine [anthropic|gemini|openai|deepseek] [model] - show or switch the provider
/pdf - the last compiled PDF
/source - the current LaTeX source
/log - the last compiler output`

// handleEngineCommand switches the chat's provider.
//
//	/engine
//	/engine gemini [model]
func (r *Router) handleEngineCommand(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		cur := "none"
		if e := r.EngManager.Get(chatID); e != nil {
			cur = e.Name() + " (" + e.GetModel() + ")"
		}
		msg := tgbotapi.NewMessage(chatID, "Current engine: "+cur+"\nUsage: /engine {"+strings.Join(r.Engines.Available(), "|")+"} [model]")
		if kb, ok := makeEngineKeyboard(r.Engines.Available()); ok {
			msg.ReplyMarkup = kb
		}
		_, _ = r.Bot.Send(msg)
		return
	}
	model := ""
	if len(fields) > 1 {
		model = fields[1]
	}
	r.switchEngine(chatID, fields[0], model)
}

type modelSetter interface{ SetModel(string) }

func (r *Router) switchEngine(chatID int64, name, model string) {
	eng, err := r.Engines.GetEngine(name)
	if err != nil {
		r.send(chatID, "❌ "+err.Error())
		return
	}
	if model != "" {
		if ms, ok := eng.(modelSetter); ok {
			ms.SetModel(model)
		}
	}
	r.EngManager.Set(chatID, eng)
	r.send(chatID, "✅ Engine: "+eng.Name()+" ("+eng.GetModel()+").")
}

func (r *Router) engineName(chatID int64) string {
	if e := r.EngManager.Get(chatID); e != nil {
		return e.Name()
	}
	return ""
}

func (r *Router) generateFromText(ctx context.Context, chatID int64, text string) {
	r.typing(chatID)
	res, err := r.Docs.Generate(ctx, document.GenerationRequest{
		Prompt:  text,
		LLMName: r.engineName(chatID),
	})
	r.sendResult(chatID, res, err)
}

// sendResult replies with the PDF, or with the error and the source that
// failed to compile.
func (r *Router) sendResult(chatID int64, res document.Result, err error) {
	if err == nil && res.OK() {
		caption := res.Message
		if res.Pages > 0 {
			caption += fmt.Sprintf(" (%d pages)", res.Pages)
		}
		r.sendArtifact(chatID, caption)
		return
	}
	r.logger().Info("telegram generation failed", zap.Int64("chat_id", chatID), logging.RedactedError(err))
	r.send(chatID, "❌ "+util.Truncate(res.Message, maxMessage))
	if res.LatexCode != "" {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "latex.tex", Bytes: []byte(res.LatexCode)})
		doc.Caption = "Source that did not compile"
		doc.ReplyMarkup = makeLogKeyboard()
		_, _ = r.Bot.Send(doc)
	}
}

func (r *Router) sendArtifact(chatID int64, caption string) {
	pdf, err := r.Docs.Artifact()
	if err != nil {
		r.send(chatID, "No compiled PDF yet.")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "latex.pdf", Bytes: pdf})
	doc.Caption = caption
	if _, err := r.Bot.Send(doc); err != nil {
		r.SendError(chatID, err)
	}
}

func (r *Router) sendSource(chatID int64) {
	src, err := r.Docs.Source()
	if err != nil {
		r.send(chatID, "No LaTeX source yet.")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "latex.tex", Bytes: []byte(src)})
	if _, err := r.Bot.Send(doc); err != nil {
		r.SendError(chatID, err)
	}
}

func (r *Router) sendLog(chatID int64) {
	text, err := r.Docs.CompileLog()
	if err != nil || strings.TrimSpace(text) == "" {
		r.send(chatID, "No compiler output yet.")
		return
	}
	r.send(chatID, tailLines(text, maxMessage))
}

func (r *Router) typing(chatID int64) {
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatUploadDocument))
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, "Error: "+util.Truncate(logging.Redact(err.Error()), maxMessage))
}

func (r *Router) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// tailLines keeps the end of a compiler log, where TeX reports the error.
func tailLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	s = s[len(s)-n:]
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return "…\n" + s
}
