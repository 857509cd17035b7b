package infra

import (
	"context"

	"shop-service/internal/domain"
)

// CheckoutLine is one line on the hosted payment page. UnitAmount is in
// minor units.
type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
	ImageURL   string
}

type CheckoutSessionRequest struct {
	OrderID       uint64
	Currency      string
	CustomerEmail string
	Lines         []CheckoutLine
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*domain.CheckoutSession, error)
	// ParseWebhook verifies the signature header before decoding payload.
	ParseWebhook(payload []byte, signatureHeader string) (*domain.PaymentEvent, error)
}

type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msgs ...Message) error
}
