// Package mail delivers verification codes. The SMTP sender is the real
// thing; LogMailer stands in for local development where no relay is
// configured.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/thirdeyegames/coinflip/internal/config"
)

type Mailer interface {
	SendVerificationCode(ctx context.Context, to, fullName, code string) error
}

// New returns an SMTP mailer when an address is configured, a logging
// one otherwise.
func New(cfg config.MailConfig) Mailer {
	if cfg.SMTPAddr == "" {
		return LogMailer{}
	}

	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.MailConfig
}

func (m *smtpMailer) SendVerificationCode(_ context.Context, to, fullName, code string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your verification code\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\nYour verification code is %s. It expires in one hour.\r\n", fullName, code)

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		host := m.cfg.SMTPAddr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, host)
	}

	err := smtp.SendMail(m.cfg.SMTPAddr, auth, m.cfg.From, []string{to}, []byte(b.String()))
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

// LogMailer writes the code to the log instead of sending it.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(_ context.Context, to, _, code string) error {
	slog.Info("verification code issued", "to", to, "code", code)
	return nil
}
