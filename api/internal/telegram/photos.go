package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"latex-proxy/api/internal/document"
	"latex-proxy/api/internal/imaging"
)

// maxDownload bounds a single Telegram file.
const maxDownload = 20 << 20

func (r *Router) acceptPhoto(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	fileID := ""
	if len(msg.Photo) > 0 {
		fileID = msg.Photo[len(msg.Photo)-1].FileID
	} else {
		fileID = msg.Document.FileID
	}

	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	imgBytes, err := r.download(ctx, url)
	if err != nil {
		r.SendError(cid, err)
		return
	}

	key := "chat:" + fmt.Sprint(cid)
	if msg.MediaGroupID != "" {
		key = "grp:" + msg.MediaGroupID
	}
	var (
		b     *photoBatch
		first bool
	)
	for {
		bi, _ := r.batches.LoadOrStore(key, &photoBatch{ChatID: cid, Key: key, MediaGroupID: msg.MediaGroupID})
		b = bi.(*photoBatch)
		var ok bool
		if first, ok = b.add(imgBytes, msg.Caption); ok {
			break
		}
		r.batches.CompareAndDelete(key, b)
	}
	b.mu.Lock()
	if b.timer != nil && b.timer.Stop() {
		r.wg.Done()
	}
	r.wg.Add(1)
	b.timer = time.AfterFunc(r.debounce(), func() {
		defer r.wg.Done()
		r.processBatch(ctx, key)
	})
	b.mu.Unlock()

	if first {
		r.send(cid, "Drawing received. If it spans several photos, send them as one album.")
	}
}

func (r *Router) processBatch(ctx context.Context, key string) {
	bi, ok := r.batches.LoadAndDelete(key)
	if !ok {
		return
	}
	b := bi.(*photoBatch)
	images, caption := b.take()
	if len(images) == 0 {
		return
	}

	page, err := imaging.Stack(images)
	if err != nil {
		r.SendError(b.ChatID, fmt.Errorf("join photos: %w", err))
		return
	}
	mode, description := parseCaption(caption)
	r.logger().Debug("telegram drawing",
		zap.Int64("chat_id", b.ChatID),
		zap.Int("photos", len(images)),
		zap.String("mode", mode))

	r.typing(b.ChatID)
	res, err := r.Docs.ProcessDrawing(ctx, document.DrawingRequest{
		ImageData:   base64.StdEncoding.EncodeToString(page),
		Description: description,
		DrawingMode: mode,
		LLMName:     r.engineName(b.ChatID),
	})
	r.sendResult(b.ChatID, res, err)
}

func (r *Router) debounce() time.Duration {
	if r.Debounce > 0 {
		return r.Debounce
	}
	return defaultDebounce
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download: status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownload))
}

func (r *Router) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}
