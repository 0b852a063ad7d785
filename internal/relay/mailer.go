package relay

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"printcalc/internal/config"
)

type Mailer interface {
	Send(ctx context.Context, l Letter) error
}

// SMTPMailer delivers letters over implicit TLS (port 465 style).
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       string
}

// NewSMTPMailer returns nil when credentials are missing.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	if cfg.User == "" || cfg.Password == "" {
		return nil
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, l Letter) error {
	const operation = "relay.SMTPMailer.Send"

	msg, err := l.Message(m.from, m.to, time.Now())
	if err != nil {
		return fmt.Errorf("%s: build message: %w", operation, err)
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 15 * time.Second},
		Config:    &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12},
	}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.host, strconv.Itoa(m.port)))
	if err != nil {
		return fmt.Errorf("%s: dial: %w", operation, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%s: handshake: %w", operation, err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", m.user, m.password, m.host)); err != nil {
		return fmt.Errorf("%s: auth: %w", operation, err)
	}
	if err := c.Mail(m.from); err != nil {
		return fmt.Errorf("%s: mail from: %w", operation, err)
	}
	if err := c.Rcpt(m.to); err != nil {
		return fmt.Errorf("%s: rcpt to: %w", operation, err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", operation, err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("%s: write: %w", operation, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", operation, err)
	}

	return c.Quit()
}
