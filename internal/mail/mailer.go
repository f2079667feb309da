// Package mail sends outbound mail over SMTP.
package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Dispatcher sends a single plain-text message. Failures are returned to
// the caller; there are no retries.
type Dispatcher interface {
	Send(to, subject, body string) error
}

// SMTPMailer dispatches mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
