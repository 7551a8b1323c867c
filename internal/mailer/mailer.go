package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/matchreel-dev/matchreel/internal/config"
)

// Mailer sends transactional mail over SMTP. When no SMTP host is
// configured, sends are silently skipped so local development works without
// a mail server.
type Mailer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendPasswordReset(to, token string) error {
	if m.cfg.SMTPHost == "" {
		return nil
	}

	resetLink := fmt.Sprintf("%s?token=%s", m.cfg.PasswordResetURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.MailFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset your password")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Someone requested a password reset for your account.\n\n"+
			"Open the link below to choose a new password. The link expires in one hour.\n\n%s\n\n"+
			"If this wasn't you, you can ignore this email.\n", resetLink))

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUsername, m.cfg.SMTPPassword)
	return dialer.DialAndSend(msg)
}
