// Package mailer sends plain-text operational emails over SMTP. It is used
// best-effort only: callers log and continue when sending fails.
package mailer

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds the SMTP settings for the mailer.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Mailer sends emails through a single SMTP account.
type Mailer struct {
	cfg Config
}

// New creates a Mailer. It does not dial; connectivity problems surface on Send.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("mailer: host and from address are required")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &Mailer{cfg: cfg}, nil
}

// Send delivers a plain-text message to the recipients.
func (m *Mailer) Send(recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return errors.New("mailer: at least one recipient is required")
	}
	if subject == "" {
		return errors.New("mailer: subject is required")
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + strings.Join(recipients, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, recipients, []byte(msg)); err != nil {
		return fmt.Errorf("mailer: failed to send email: %w", err)
	}
	return nil
}
