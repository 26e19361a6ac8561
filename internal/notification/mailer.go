// Package notification sends the contact confirmation e-mail over SMTP.
// Sending is best-effort by contract: failures are logged and reported as
// a boolean, never as an error, so contact capture cannot be blocked by
// mail delivery.
package notification

import (
	"context"
	"log"

	"github.com/lazobello/cvagent/internal/domain"
	mail "github.com/wneessen/go-mail"
)

const confirmationSubject = "Confirmación de Contacto - Enrique Lazo (Senior Full Stack Developer)"

// SMTPConfig holds mail transport configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends confirmation e-mails through an SMTP server.
type Mailer struct {
	client *mail.Client
	from   string
}

// NewMailer creates a Mailer for the given SMTP configuration.
func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}

	return &Mailer{client: client, from: cfg.From}, nil
}

// SendConfirmation sends the confirmation e-mail to the prospect.
// Returns true on success; all failures are logged and reduced to false.
func (m *Mailer) SendConfirmation(ctx context.Context, payload domain.ContactNotification) bool {
	log.Printf("notification: preparing confirmation email for %s", payload.Email)

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		log.Printf("notification: invalid sender address %q: %v", m.from, err)
		return false
	}
	if err := msg.To(payload.Email); err != nil {
		log.Printf("notification: invalid recipient address %q: %v", payload.Email, err)
		return false
	}

	html, err := renderConfirmationHTML(payload)
	if err != nil {
		log.Printf("notification: could not render confirmation template: %v", err)
		return false
	}

	msg.Subject(confirmationSubject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		log.Printf("notification: failed to send email to %s: %v", payload.Email, err)
		return false
	}

	log.Printf("notification: email sent successfully to %s", payload.Email)
	return true
}
