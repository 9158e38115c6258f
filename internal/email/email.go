// Package email delivers outgoing mail over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/sbilibin2017/gw-newsletter/internal/logger"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPClient sends single-recipient HTML emails through one SMTP relay.
type SMTPClient struct {
	addr    string
	auth    smtp.Auth
	from    string
	timeout time.Duration
	send    SendFunc
}

// Option configures an SMTPClient.
type Option func(*SMTPClient)

// WithTimeout bounds a single delivery.
func WithTimeout(d time.Duration) Option {
	return func(c *SMTPClient) {
		c.timeout = d
	}
}

// WithSendFunc replaces the transport, smtp.SendMail by default.
func WithSendFunc(fn SendFunc) Option {
	return func(c *SMTPClient) {
		c.send = fn
	}
}

// NewSMTPClient creates a client for host:port. Authentication is skipped
// when username is empty.
func NewSMTPClient(host string, port int, username, password, from string, opts ...Option) *SMTPClient {
	c := &SMTPClient{
		addr:    fmt.Sprintf("%s:%d", host, port),
		from:    from,
		timeout: 10 * time.Second,
		send:    smtp.SendMail,
	}
	if username != "" {
		c.auth = smtp.PlainAuth("", username, password, host)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers one email. It returns when the relay accepts the message,
// the timeout elapses or ctx ends, whichever comes first.
func (c *SMTPClient) Send(ctx context.Context, to, subject, body string) error {
	msg := buildMessage(c.from, to, subject, body)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.send(c.addr, c.auth, c.from, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Log.Errorw("smtp delivery failed", "to", to, "error", err)
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		logger.Log.Infow("email sent", "to", to, "subject", subject)
		return nil
	case <-ctx.Done():
		logger.Log.Errorw("smtp delivery timed out", "to", to, "error", ctx.Err())
		return fmt.Errorf("smtp send to %s: %w", to, ctx.Err())
	}
}

// buildMessage renders an RFC 5322 message with an HTML body.
func buildMessage(from, to, subject, body string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	return b.Bytes()
}
