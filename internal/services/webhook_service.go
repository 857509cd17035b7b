package services

import (
	"context"
	"log"
	"strconv"

	"shop-service/internal/domain"
	"shop-service/internal/infra"
	rabbit "shop-service/internal/infra/rabbitmq"
	"shop-service/internal/repository"
)

type WebhookService struct {
	eventPublisher
	orders   repository.OrderRepository
	gateway  infra.PaymentGateway
	notifier Notifier
}

func NewWebhookService(o repository.OrderRepository, g infra.PaymentGateway, n Notifier, pub rabbit.PublisherInterface) *WebhookService {
	return &WebhookService{
		eventPublisher: eventPublisher{publisher: pub},
		orders:         o,
		gateway:        g,
		notifier:       n,
	}
}

// Process verifies and applies one webhook delivery. Only signature failures
// and storage errors are returned; anything else is acknowledged so the
// processor stops redelivering.
func (s *WebhookService) Process(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		log.Printf("Rejected webhook: %v", err)
		return err
	}
	return s.HandleEvent(ctx, evt)
}

func (s *WebhookService) HandleEvent(ctx context.Context, evt *domain.PaymentEvent) error {
	if evt.Type != domain.EventCheckoutSessionCompleted {
		log.Printf("Ignoring webhook event %s of type %s", evt.ID, evt.Type)
		return nil
	}

	raw := evt.Metadata[domain.MetadataOrderID]
	orderID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || orderID == 0 {
		log.Printf("Webhook event %s (session %s) has no usable order id %q", evt.ID, evt.SessionID, raw)
		return nil
	}

	order, transitioned, err := s.orders.MarkPaid(ctx, orderID, evt)
	if err != nil {
		return err
	}
	if order == nil {
		log.Printf("Webhook event %s references unknown order %d", evt.ID, orderID)
		return nil
	}
	if !transitioned {
		return nil
	}

	log.Printf("Order %d marked as paid (event %s)", order.ID, evt.ID)
	if s.notifier != nil && !s.notifier.SendOrderConfirmation(ctx, order) {
		log.Printf("Order %d paid but confirmation email was not delivered", order.ID)
	}
	s.publishOrderEvent(domain.EventOrderPaid, order)
	return nil
}
