package telegram

import (
	"sync"
	"time"
)

const defaultDebounce = 1200 * time.Millisecond

// photoBatch collects the photos of one album, or consecutive photos of one
// chat, until the debounce timer fires.
type photoBatch struct {
	ChatID       int64
	Key          string // "grp:<mediaGroupID>" | "chat:<chatID>"
	MediaGroupID string

	mu      sync.Mutex
	images  [][]byte
	caption string
	timer   *time.Timer
	closed  bool
}

// add appends a photo. ok is false once take has consumed the batch; the
// caller must start a new one.
func (b *photoBatch) add(img []byte, caption string) (first, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false, false
	}
	b.images = append(b.images, img)
	if b.caption == "" {
		b.caption = caption
	}
	return len(b.images) == 1, true
}

func (b *photoBatch) take() ([][]byte, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	images := append([][]byte(nil), b.images...)
	return images, b.caption
}
