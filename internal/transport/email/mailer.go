// Package email delivers email-channel jobs over SMTP.
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"fantamorto/internal/notification"
	"fantamorto/internal/platform/config"
	mailaddr "fantamorto/pkg/email"
	"fantamorto/pkg/platform/sentinel"
)

// implicitTLSPort is the SMTPS port; other ports upgrade with STARTTLS.
const implicitTLSPort = 465

// Mailer sends plain-text emails through one SMTP relay.
type Mailer struct {
	cfg    config.Email
	from   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Mailer.
type Option func(*Mailer)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Mailer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Mailer) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMailer builds a mailer. The sender defaults to the SMTP user.
func NewMailer(cfg config.Email, opts ...Option) *Mailer {
	m := &Mailer{
		cfg:    cfg,
		from:   cfg.From,
		now:    time.Now,
		logger: slog.Default(),
	}
	if m.from == "" {
		m.from = cfg.User
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enabled reports whether credentials are configured.
func (m *Mailer) Enabled() bool { return m.cfg.Enabled() }

// Send delivers one message to address. Without credentials it fails with
// notification.ErrChannelDisabled and never dials.
func (m *Mailer) Send(ctx context.Context, address, subject, body string) error {
	if !m.Enabled() {
		return notification.ErrChannelDisabled
	}
	conn, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: smtp dial: %w", sentinel.ErrUnavailable, err)
	}
	defer conn.Close()

	if err := m.deliver(conn, address, m.buildMessage(address, subject, body)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", address, err)
	}
	m.logger.DebugContext(ctx, "email sent", "address", mailaddr.Mask(address), "subject", subject)
	return nil
}

func (m *Mailer) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &net.Dialer{Timeout: m.cfg.Timeout}
	var (
		conn net.Conn
		err  error
	)
	if m.cfg.Port == implicitTLSPort {
		td := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}}
		conn, err = td.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	var deadline time.Time
	if m.cfg.Timeout > 0 {
		deadline = time.Now().Add(m.cfg.Timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if !deadline.IsZero() {
		_ = conn.SetDeadline(deadline)
	}
	return conn, nil
}

func (m *Mailer) deliver(conn net.Conn, to string, msg []byte) error {
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	// PlainAuth refuses to send credentials over an unencrypted remote link.
	if err := client.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := client.Mail(envelopeAddress(m.from)); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// envelopeAddress strips a display name from a header address.
func envelopeAddress(from string) string {
	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Address
	}
	return from
}

// buildMessage renders an RFC 5322 plain-text message with CRLF endings.
func (m *Mailer) buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	header := func(k, v string) { b.WriteString(k + ": " + v + "\r\n") }
	header("From", m.from)
	header("To", to)
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", m.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
