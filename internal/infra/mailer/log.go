package mailer

import (
	"context"
	"log"

	"shop-service/internal/infra"
)

// LogMailer stands in for SMTP when no host is configured; it only logs.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msgs ...infra.Message) error {
	for _, m := range msgs {
		log.Printf("Email not sent (smtp disabled): to=%v subject=%q", m.To, m.Subject)
	}
	return nil
}

var _ infra.Mailer = LogMailer{}
