// Package mail delivers password-reset tokens over SMTP. Delivery is best
// effort and optional: when no SMTP host is configured the orchestrator
// simply returns the token to the caller.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendResetToken mails the raw reset token to the user.
func (m *Mailer) SendResetToken(to, token string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password reset")
	msg.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Reset token: %s\n\n"+
			"The token expires in one hour. If you did not request this, ignore this email.",
		token,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: send reset token: %w", err)
	}
	return nil
}
