// Package telegram delivers message-channel jobs through the Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"fantamorto/internal/notification"
	"fantamorto/internal/platform/config"
	"fantamorto/pkg/platform/sentinel"
)

// Client sends Markdown messages to chat ids.
type Client struct {
	http   *resty.Client
	apiURL string
	token  string
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client. Without a bot token every Send fails with
// notification.ErrChannelDisabled.
func NewClient(cfg config.Telegram, opts ...Option) *Client {
	c := &Client{
		http:   resty.New().SetTimeout(cfg.Timeout),
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
		token:  cfg.BotToken,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a bot token is configured.
func (c *Client) Enabled() bool { return c.token != "" }

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send posts text to chatID with link previews disabled.
func (c *Client) Send(ctx context.Context, chatID, text string) error {
	if !c.Enabled() {
		return notification.ErrChannelDisabled
	}
	var out apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"chat_id":                  chatID,
			"text":                     text,
			"parse_mode":               "Markdown",
			"disable_web_page_preview": "true",
		}).
		SetResult(&out).
		SetError(&out).
		Get(c.apiURL + "/bot" + c.token + "/sendMessage")
	if err != nil {
		// The request URL carries the token; keep it out of errors and logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%w: telegram send: %w", sentinel.ErrUnavailable, err)
	}
	if resp.IsError() || !out.OK {
		if resp.StatusCode() >= 500 || resp.StatusCode() == 429 {
			return fmt.Errorf("%w: telegram send: %s", sentinel.ErrUnavailable, resp.Status())
		}
		return fmt.Errorf("telegram send: %d %s", out.ErrorCode, out.Description)
	}
	c.logger.DebugContext(ctx, "telegram message sent", "chat_id", chatID)
	return nil
}
