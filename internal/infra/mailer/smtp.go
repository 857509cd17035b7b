package mailer

import (
	"context"
	"fmt"
	"log"

	"shop-service/internal/config"
	"shop-service/internal/infra"

	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (m *SMTPMailer) build(msg infra.Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}
	return gm
}

// Send delivers all messages over a single SMTP connection.
func (m *SMTPMailer) Send(ctx context.Context, msgs ...infra.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	out := make([]*gomail.Message, 0, len(msgs))
	for _, msg := range msgs {
		if len(msg.To) == 0 {
			return fmt.Errorf("message %q has no recipients", msg.Subject)
		}
		out = append(out, m.build(msg))
	}

	if err := m.dialer.DialAndSend(out...); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Printf("Sent %d email(s) via %s", len(out), m.dialer.Host)
	return nil
}

var _ infra.Mailer = (*SMTPMailer)(nil)
