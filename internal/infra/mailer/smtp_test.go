package mailer

import (
	"bytes"
	"context"
	"testing"

	"shop-service/internal/config"
	"shop-service/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_Build(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "shop@example.com"})

	gm := m.build(infra.Message{
		To:      []string{"jane@example.com"},
		Subject: "Order Confirmation #7",
		Text:    "Thanks Jane",
		HTML:    "<p>Thanks Jane</p>",
	})

	var buf bytes.Buffer
	_, err := gm.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "From: shop@example.com")
	assert.Contains(t, raw, "To: jane@example.com")
	assert.Contains(t, raw, "Subject: Order Confirmation #7")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
}

func TestSMTPMailer_SendValidation(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "shop@example.com"})

	assert.NoError(t, m.Send(context.Background()))

	err := m.Send(context.Background(), infra.Message{Subject: "no one"})
	assert.ErrorContains(t, err, "no recipients")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, infra.Message{To: []string{"a@b.c"}}), context.Canceled)
}
