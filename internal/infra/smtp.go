package infra

import (
	"fmt"
	"net/smtp"

	"github.com/Zeek-James/pem-zee/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending plain-text notices with
// optional file attachments.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// Send delivers one message; attachments are file paths.
func (m *Mailer) Send(to []string, subject, body string, attachments ...string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: SMTP host not configured")
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	for _, path := range attachments {
		if _, err := e.AttachFile(path); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", path, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
