package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"shop-service/internal/config"
	"shop-service/internal/domain"
	"shop-service/internal/infra"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeGateway holds its own client; the stripe package-level key is never set.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (g *StripeGateway) sessionParams(req infra.CheckoutSessionRequest) *stripe.CheckoutSessionParams {
	currency := domain.NormalizeCurrency(req.Currency)
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(g.successURL),
		CancelURL:          stripe.String(g.cancelURL),
		ClientReferenceID:  stripe.String(strconv.FormatUint(req.OrderID, 10)),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for _, l := range req.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(l.Name),
		}
		if l.ImageURL != "" {
			product.Images = stripe.StringSlice([]string{l.ImageURL})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(l.UnitAmount),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}
	params.AddMetadata(domain.MetadataOrderID, strconv.FormatUint(req.OrderID, 10))
	return params
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req infra.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	params := g.sessionParams(req)
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		msg := "payment processor error"
		var se *stripe.Error
		if errors.As(err, &se) && se.Msg != "" {
			msg = se.Msg
		}
		log.Printf("Stripe checkout session for order %d failed: %v", req.OrderID, err)
		return nil, domain.ExternalError(msg, err)
	}

	log.Printf("Stripe checkout session %s created for order %d", s.ID, req.OrderID)
	return &domain.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signatureHeader string) (*domain.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindValidation, Message: domain.ErrInvalidSignature.Message, Err: err}
	}

	pe := &domain.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if event.Type == stripe.EventTypeCheckoutSessionCompleted && event.Data != nil {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, domain.NewValidationError("malformed checkout session payload", nil)
		}
		pe.SessionID = s.ID
		pe.Metadata = s.Metadata
	}
	return pe, nil
}

var _ infra.PaymentGateway = (*StripeGateway)(nil)
