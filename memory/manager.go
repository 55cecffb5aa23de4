package memory

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	defaultWindow   = 10
	maxSummaryChars = 140
)

// Manager wraps a Store with the window cap and the priming-hint format the
// dispatcher uses.
type Manager struct {
	Store  Store
	Window int
}

func NewManager(store Store, window int) *Manager {
	if window <= 0 {
		window = defaultWindow
	}
	return &Manager{Store: store, Window: window}
}

// Recall loads the user's record, if any.
func (m *Manager) Recall(ctx context.Context, userID int64) (Record, bool, error) {
	if m == nil || m.Store == nil {
		return Record{}, false, nil
	}
	return m.Store.Load(ctx, userID)
}

// RecordMessage appends the raw incoming text to the user's rolling window,
// trimming to the configured size, and persists the document.
func (m *Manager) RecordMessage(ctx context.Context, userID int64, text string) error {
	if m == nil || m.Store == nil {
		return nil
	}
	rec, _, err := m.Store.Load(ctx, userID)
	if err != nil {
		return err
	}
	rec.Window = append(rec.Window, strings.TrimSpace(text))
	if len(rec.Window) > m.Window {
		rec.Window = rec.Window[len(rec.Window)-m.Window:]
	}
	rec.UpdatedAt = ""
	return m.Store.Save(ctx, userID, rec)
}

// SaveSummary overwrites the stored one-line summary after a completed turn.
func (m *Manager) SaveSummary(ctx context.Context, userID int64, reply string) error {
	if m == nil || m.Store == nil {
		return nil
	}
	rec, _, err := m.Store.Load(ctx, userID)
	if err != nil {
		return err
	}
	rec.Summary = OneLine(reply)
	rec.UpdatedAt = ""
	return m.Store.Save(ctx, userID, rec)
}

// PrimingHint renders the stored record as the priming message injected into a
// fresh session. Empty when there is nothing useful to recall.
func PrimingHint(rec Record) string {
	summary := strings.TrimSpace(rec.Summary)
	if summary == "" && len(rec.Window) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Contexto de conversas anteriores com este usuário:\n")
	if summary != "" {
		fmt.Fprintf(&b, "Resumo: %s\n", summary)
	}
	if len(rec.Window) > 0 {
		b.WriteString("Mensagens recentes:\n")
		for _, item := range rec.Window {
			b.WriteString("- " + item + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// OneLine reduces a reply to a single trimmed line capped at 140 characters.
func OneLine(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if utf8.RuneCountInString(line) <= maxSummaryChars {
		return line
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[:maxSummaryChars-1])) + "…"
}
