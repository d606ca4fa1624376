// Package mail sends outreach email over SMTP.
package mail

import (
	"github.com/rotisserie/eris"
	"gopkg.in/gomail.v2"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
)

// Message is a rendered email ready to send.
type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
}

// Sender delivers email. The outreach engine depends on this interface
// so tests can capture sends without an SMTP server.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return eris.Wrapf(err, "mail: send to %s", msg.To)
	}
	return nil
}
