// Package mailer turns queue notifications into emails and delivers them
// over SMTP, or writes them to the log when no SMTP host is configured.
package mailer

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/iliyamo/cidade-aberta/internal/logger"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPConfig holds the outgoing server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP sends mail through gomail.
type SMTP struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTP) Send(_ context.Context, m Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Text)
	if m.HTML != "" {
		msg.AddAlternative("text/html", m.HTML)
	}
	return s.dialer.DialAndSend(msg)
}

// Log writes messages to the logger instead of sending them.
type Log struct {
	Log *logger.Logger
}

func (l Log) Send(_ context.Context, m Message) error {
	l.Log.WithFields(map[string]any{"to": m.To, "subject": m.Subject}).Info("email (not sent): %s", m.Text)
	return nil
}
