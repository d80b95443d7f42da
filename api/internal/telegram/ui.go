package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cbEnginePrefix = "engine:"
	cbShowLog      = "show_log"
)

// makeEngineKeyboard offers one button per configured provider.
func makeEngineKeyboard(names []string) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(names) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(names))
	for _, n := range names {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(n, cbEnginePrefix+n))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}

func makeLogKeyboard() tgbotapi.InlineKeyboardMarkup {
	btn := tgbotapi.NewInlineKeyboardButtonData("Show compiler log", cbShowLog)
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btn))
}

// parseCaption splits a photo caption into a drawing mode and a description.
// A leading "math" (optionally as a /command) selects the math mode.
func parseCaption(caption string) (mode, description string) {
	caption = strings.TrimSpace(caption)
	fields := strings.Fields(caption)
	if len(fields) == 0 {
		return "", ""
	}
	rest := strings.TrimSpace(strings.TrimPrefix(caption, fields[0]))
	switch strings.ToLower(strings.TrimPrefix(fields[0], "/")) {
	case "math", "maths", "handwritten":
		return "math", rest
	case "engineering", "eng", "drawing":
		return "engineering", rest
	default:
		return "", caption
	}
}
