package fakes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Message is one captured sendMessage call.
type Message struct {
	ChatID string
	Text   string
}

// Telegram records every message and always accepts it.
type Telegram struct {
	*httptest.Server

	mu   sync.Mutex
	sent []Message
}

func NewTelegram() *Telegram {
	t := &Telegram{}
	t.Server = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			http.NotFound(rw, r)
			return
		}
		q := r.URL.Query()
		t.mu.Lock()
		t.sent = append(t.sent, Message{ChatID: q.Get("chat_id"), Text: q.Get("text")})
		t.mu.Unlock()
		writeJSON(rw, map[string]any{"ok": true, "result": map[string]int{"message_id": 1}})
	}))
	return t
}

// Sent returns a copy of the captured messages.
func (t *Telegram) Sent() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.sent...)
}

// To returns the messages sent to chatID.
func (t *Telegram) To(chatID string) []Message {
	var out []Message
	for _, m := range t.Sent() {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}
