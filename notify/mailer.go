// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/jordan-wright/email"
)

// Message is a rendered mail ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers one message.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	Connections int
	SendTimeout time.Duration
}

// SMTPMailer sends through a pool of SMTP connections.
type SMTPMailer struct {
	pool    *email.Pool
	from    string
	timeout time.Duration
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if cfg.Username == "" && cfg.Password == "" {
		auth = nil
	}
	if cfg.Connections < 1 {
		cfg.Connections = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	addr := cfg.Host + ":" + strconv.Itoa(cfg.Port)
	pool, err := email.NewPool(addr, cfg.Connections, auth, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return nil, fmt.Errorf("smtp pool for %s: %w", addr, err)
	}

	return &SMTPMailer{pool: pool, from: cfg.From, timeout: cfg.SendTimeout}, nil
}

// Send delivers msg through the pool, giving up at the earlier of the
// context deadline and the configured send timeout.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	timeout, err := sendTimeout(ctx, m.timeout)
	if err != nil {
		return err
	}

	e := &email.Email{
		To:      []string{msg.To},
		From:    m.from,
		Subject: msg.Subject,
		HTML:    []byte(msg.HTML),
		Headers: textproto.MIMEHeader{},
	}
	return m.pool.Send(e, timeout)
}

func sendTimeout(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			if left <= 0 {
				return 0, context.DeadlineExceeded
			}
			return left, nil
		}
	}
	return timeout, nil
}

func (m *SMTPMailer) Close() {
	m.pool.Close()
}

// LogMailer only logs what would have been sent. It is used when no SMTP
// server is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("mail delivery disabled, dropping message", "to", msg.To, "subject", msg.Subject)
	return nil
}
