// internal/app/system/mailer/mailer.go
//
// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Email is one outgoing message. HTMLBody is optional.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Enabled reports whether enough is configured to send mail.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Host) != "" && strings.TrimSpace(c.From) != ""
}

var errNoRecipient = errors.New("mailer: email has no recipient")

// Mailer delivers Email values through an SMTP relay.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	log      *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &Mailer{
		dialer:   gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
		log:      logger,
	}
}

// Message builds the gomail message for e without sending it.
func (m *Mailer) Message(e Email) (*gomail.Message, error) {
	if strings.TrimSpace(e.To) == "" {
		return nil, errNoRecipient
	}
	msg := gomail.NewMessage()
	if m.fromName != "" {
		msg.SetAddressHeader("From", m.from, m.fromName)
	} else {
		msg.SetHeader("From", m.from)
	}
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.TextBody)
	if e.HTMLBody != "" {
		msg.AddAlternative("text/html", e.HTMLBody)
	}
	return msg, nil
}

// Send delivers e. gomail has no context support, so ctx is only checked
// before dialing.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.Message(e)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", e.To, err)
	}
	m.log.Info("email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}
