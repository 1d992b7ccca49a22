// Package email is the narrow interface to the delivery collaborator. The
// access-control core only needs "send this templated message"; everything
// past the SMTP handshake is out of scope.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/config"
)

type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	cfg config.EmailConfig
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var a smtp.Auth
	if s.cfg.Username != "" {
		a = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}

	if err := smtp.SendMail(s.cfg.Addr(), a, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. Used in
// development and tests.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(to, subject, htmlBody string) error {
	s.logger.Info("email (not delivered)", "to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}
