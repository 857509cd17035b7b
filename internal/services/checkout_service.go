package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shop-service/internal/domain"
	"shop-service/internal/infra"
	rabbit "shop-service/internal/infra/rabbitmq"
	"shop-service/internal/repository"

	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	ProductID uint64
	Quantity  int
}

type CheckoutRequest struct {
	Items        []CheckoutItem
	Email        string
	FirstName    string
	LastName     string
	Address      string
	City         string
	Country      string
	PostalCode   string
	Phone        string
	ShippingCost decimal.Decimal
	Currency     string
}

type CheckoutResult struct {
	Order *domain.Order
	URL   string
}

// Validate covers what request binding cannot: cart shape for non-HTTP
// callers and a non-negative shipping cost. Field presence and lengths are
// enforced on the transport DTO.
func (r CheckoutRequest) Validate() error {
	fields := map[string]string{}
	if len(r.Items) == 0 {
		fields["items"] = "at least one item is required"
	}
	for i, it := range r.Items {
		if it.ProductID == 0 {
			fields[fmt.Sprintf("items[%d].product.id", i)] = "is required"
		}
		if it.Quantity < 1 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "must be at least 1"
		}
	}
	if r.ShippingCost.IsNegative() {
		fields["shipping_cost"] = "must not be negative"
	}
	if len(fields) > 0 {
		return domain.NewValidationError("invalid checkout request", fields)
	}
	return nil
}

type CheckoutService struct {
	eventPublisher
	orders     repository.OrderRepository
	catalog    repository.CatalogRepository
	gateway    infra.PaymentGateway
	notifier   Notifier
	currencies *domain.Currencies
}

func NewCheckoutService(o repository.OrderRepository, c repository.CatalogRepository, g infra.PaymentGateway, n Notifier, pub rabbit.PublisherInterface, cur *domain.Currencies) *CheckoutService {
	return &CheckoutService{
		eventPublisher: eventPublisher{publisher: pub},
		orders:         o,
		catalog:        c,
		gateway:        g,
		notifier:       n,
		currencies:     cur,
	}
}

// buildOrder resolves products and snapshots their current name, price and
// image into order lines. Nothing is written.
func (s *CheckoutService) buildOrder(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	currency, err := s.currencies.Resolve(req.Currency)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(req.Items))
	seen := make(map[uint64]bool, len(req.Items))
	for _, it := range req.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	products, err := s.catalog.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      strings.TrimSpace(req.Email),
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		Country:    strings.TrimSpace(req.Country),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Phone:      strings.TrimSpace(req.Phone),
		Status:     domain.StatusPending,
		Currency:   currency,
	}

	subtotal := decimal.Zero
	for _, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, domain.ProductNotFound(it.ProductID)
		}
		unit, err := s.currencies.Convert(p.Price, currency)
		if err != nil {
			return nil, err
		}
		productID := p.ID
		line := domain.OrderItem{
			ProductID: &productID,
			Name:      p.Name,
			Price:     unit,
			Quantity:  it.Quantity,
		}
		if p.Image != "" {
			img := p.Image
			line.ImageURL = &img
		}
		order.Items = append(order.Items, line)
		subtotal = subtotal.Add(line.LineTotal())
	}

	shipping, err := s.currencies.Convert(req.ShippingCost, currency)
	if err != nil {
		return nil, err
	}
	order.Shipping = shipping
	order.Total = subtotal.Add(shipping)
	if order.Total.GreaterThan(domain.MaxAmount) {
		return nil, domain.NewValidationError("invalid checkout request", map[string]string{
			"items": fmt.Sprintf("order total %s exceeds %s", order.Total.StringFixed(2), domain.MaxAmount.StringFixed(2)),
		})
	}
	return order, nil
}

// PlaceOrder captures an order without starting a payment and sends the
// confirmation email.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	order, err := s.buildOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.orders.CreateWithItems(ctx, order); err != nil {
		return nil, err
	}

	if s.notifier != nil && !s.notifier.SendOrderConfirmation(ctx, order) {
		log.Printf("Order %d created but confirmation email was not delivered", order.ID)
	}
	s.publishOrderEvent(domain.EventOrderCreated, order)
	return order, nil
}

// CreateCheckoutSession stores a pending order and opens a hosted payment
// page for it. The order id travels in the session metadata so the webhook
// can find it again.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	order, err := s.buildOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.orders.CreateWithItems(ctx, order); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, checkoutSessionRequest(order))
	if err != nil {
		// A pending order without a payment session can never be paid.
		if _, uerr := s.orders.UpdateStatus(ctx, order.ID, domain.StatusCancelled); uerr != nil {
			log.Printf("Failed to cancel order %d after payment error: %v", order.ID, uerr)
		} else {
			order.Status = domain.StatusCancelled
		}
		if domain.KindOf(err) == domain.KindInternal {
			err = &domain.Error{Kind: domain.KindExternal, Message: err.Error(), Err: err}
		}
		return nil, err
	}

	if err := s.orders.SetPaymentSession(ctx, order.ID, session.ID); err != nil {
		log.Printf("Failed to store payment session %s on order %d: %v", session.ID, order.ID, err)
	} else {
		order.PaymentSessionID = &session.ID
	}

	s.publishOrderEvent(domain.EventOrderCreated, order)
	return &CheckoutResult{Order: order, URL: session.URL}, nil
}

func checkoutSessionRequest(o *domain.Order) infra.CheckoutSessionRequest {
	req := infra.CheckoutSessionRequest{
		OrderID:       o.ID,
		Currency:      o.Currency,
		CustomerEmail: o.Email,
	}
	for _, it := range o.Items {
		line := infra.CheckoutLine{
			Name:       it.Name,
			UnitAmount: domain.MinorUnits(it.Price),
			Quantity:   int64(it.Quantity),
		}
		if it.ImageURL != nil {
			line.ImageURL = *it.ImageURL
		}
		req.Lines = append(req.Lines, line)
	}
	if o.Shipping.IsPositive() {
		req.Lines = append(req.Lines, infra.CheckoutLine{
			Name:       "Shipping",
			UnitAmount: domain.MinorUnits(o.Shipping),
			Quantity:   1,
		})
	}
	return req
}
