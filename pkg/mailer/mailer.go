package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/amar-rokto/api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
	host string
}

// NewSMTP builds a mailer from config. Auth is skipped when no username
// is configured, which matches local relay setups.
func NewSMTP(cfg config.MailerConfig) *SMTPMailer {
	m := &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		host: cfg.Host,
	}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return m
}

// Send delivers a single HTML message. A missing recipient is a no-op.
func (m *SMTPMailer) Send(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	if err := smtp.SendMail(m.addr, m.auth, envelopeFrom(m.from), []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// envelopeFrom strips a display name ("Amar Rokto <x@y>") down to the bare
// address for the SMTP envelope.
func envelopeFrom(from string) string {
	if start := strings.Index(from, "<"); start >= 0 {
		if end := strings.Index(from[start:], ">"); end > 0 {
			return from[start+1 : start+end]
		}
	}
	return from
}

// NopMailer drops every message. Used when SMTP is disabled.
type NopMailer struct{}

// Send implements Mailer.
func (NopMailer) Send(Message) error { return nil }
