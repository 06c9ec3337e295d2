// Package mailer sends transactional email over SMTP and records every
// attempt in the email_logs collection.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/dalemusser/cardhub/internal/app/store/emaillogs"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"go.uber.org/zap"
)

// Email is a single outbound message.
type Email struct {
	To       string
	Type     string // e.g. "welcome", "password_reset", "general"
	Subject  string
	TextBody string
}

// Mailer sends email through a single SMTP relay.
type Mailer struct {
	host     string
	port     int
	user     string
	pass     string
	from     string
	fromName string
	logs     *emaillogs.Store
	log      *zap.Logger
}

// New creates a Mailer. logs may be nil (sends are then only zap-logged).
func New(host string, port int, user, pass, from, fromName string, logs *emaillogs.Store, logger *zap.Logger) *Mailer {
	return &Mailer{
		host: host, port: port,
		user: user, pass: pass,
		from: from, fromName: fromName,
		logs: logs, log: logger,
	}
}

// Send delivers the email and records the attempt. A nil Mailer is a
// no-op so tests and minimal deployments can skip SMTP entirely.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if m == nil {
		return nil
	}

	if e.Type == "" {
		e.Type = "general"
	}

	entry := models.EmailLog{
		Recipient: e.To,
		EmailType: e.Type,
		Subject:   e.Subject,
		Body:      e.TextBody,
	}
	var recorded bool
	id := entry.ID
	if m.logs != nil {
		var err error
		id, err = m.logs.Create(ctx, entry)
		if err != nil {
			m.log.Error("email log create failed", zap.Error(err))
		} else {
			recorded = true
		}
	}

	err := m.send(e)
	if err != nil {
		m.log.Error("email send failed",
			zap.String("to", e.To),
			zap.String("subject", e.Subject),
			zap.Error(err))
		if recorded {
			_ = m.logs.MarkFailed(ctx, id, err.Error())
		}
		return err
	}

	m.log.Info("email sent",
		zap.String("to", e.To),
		zap.String("subject", e.Subject))
	if recorded {
		_ = m.logs.MarkSent(ctx, id)
	}
	return nil
}

func (m *Mailer) send(e Email) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.fromName, m.from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(e.TextBody)

	return smtp.SendMail(addr, auth, m.from, []string{e.To}, []byte(b.String()))
}

// WelcomeEmailData holds data for the new card holder welcome email.
type WelcomeEmailData struct {
	SiteName string
	Name     string
	LoginID  string
	Password string
}

// BuildWelcomeEmail creates the credentials email sent when an admin
// creates a card holder account.
func BuildWelcomeEmail(data WelcomeEmailData) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", data.Name)
	fmt.Fprintf(&b, "An account has been created for you on %s.\n\n", data.SiteName)
	fmt.Fprintf(&b, "Username: %s\n", data.LoginID)
	fmt.Fprintf(&b, "Temporary password: %s\n\n", data.Password)
	b.WriteString("Please sign in and change your password.\n")

	return Email{
		Type:     "welcome",
		Subject:  fmt.Sprintf("Your %s account", data.SiteName),
		TextBody: b.String(),
	}
}
