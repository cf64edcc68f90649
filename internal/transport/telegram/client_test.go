package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantamorto/internal/notification"
	"fantamorto/internal/platform/config"
	"fantamorto/pkg/platform/sentinel"
)

func newTestClient(url, token string) *Client {
	return NewClient(config.Telegram{APIURL: url + "/", BotToken: token, Timeout: 2 * time.Second})
}

func TestSend(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, "123:abc").Send(context.Background(), "-100200", "*hello*")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/bot123:abc/sendMessage", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "-100200", q.Get("chat_id"))
	assert.Equal(t, "*hello*", q.Get("text"))
	assert.Equal(t, "Markdown", q.Get("parse_mode"))
	assert.Equal(t, "true", q.Get("disable_web_page_preview"))
}

func TestSendErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transient bool
	}{
		{"bad request", http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`, false},
		{"ok false", http.StatusOK, `{"ok":false,"error_code":403,"description":"Forbidden"}`, false},
		{"rate limited", http.StatusTooManyRequests, `{"ok":false,"error_code":429,"description":"Too Many Requests"}`, true},
		{"server error", http.StatusBadGateway, `{"ok":false}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := newTestClient(srv.URL, "t").Send(context.Background(), "1", "x")
			require.Error(t, err)
			assert.Equal(t, tt.transient, errors.Is(err, sentinel.ErrUnavailable))
		})
	}
}

func TestSendWithoutTokenIsDisabled(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1", "")
	assert.False(t, c.Enabled())
	err := c.Send(context.Background(), "1", "x")
	assert.ErrorIs(t, err, notification.ErrChannelDisabled)
}

func TestTransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := newTestClient(url, "secret-token").Send(context.Background(), "1", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.NotContains(t, err.Error(), "secret-token")
}
