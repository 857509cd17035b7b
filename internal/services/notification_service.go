package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	texttemplate "text/template"

	"shop-service/internal/domain"
	"shop-service/internal/infra"
)

//go:embed templates/order_confirmation.html templates/order_confirmation.txt
var templateFS embed.FS

var (
	confirmationHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/order_confirmation.html"))
	confirmationText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/order_confirmation.txt"))
)

// Notifier sends the order confirmation pair. It reports delivery instead of
// failing so callers never abort on mail problems.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *domain.Order) bool
}

type NotificationService struct {
	mailer     infra.Mailer
	adminEmail string
}

func NewNotificationService(m infra.Mailer, adminEmail string) *NotificationService {
	return &NotificationService{mailer: m, adminEmail: adminEmail}
}

type confirmationItem struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

type confirmationData struct {
	OrderID    uint64
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	Country    string
	PostalCode string
	Items      []confirmationItem
	Subtotal   string
	Shipping   string
	Total      string
	Status     string
	CreatedAt  string
}

func newConfirmationData(o *domain.Order) confirmationData {
	d := confirmationData{
		OrderID:    o.ID,
		FirstName:  o.FirstName,
		LastName:   o.LastName,
		Email:      o.Email,
		Phone:      o.Phone,
		Address:    o.Address,
		City:       o.City,
		Country:    o.Country,
		PostalCode: o.PostalCode,
		Subtotal:   domain.FormatMoney(o.Subtotal(), o.Currency),
		Shipping:   domain.FormatMoney(o.Shipping, o.Currency),
		Total:      domain.FormatMoney(o.Total, o.Currency),
		Status:     strings.ToUpper(string(o.Status[:1])) + string(o.Status[1:]),
		CreatedAt:  o.CreatedAt.Format("January 2, 2006 15:04"),
	}
	for _, it := range o.Items {
		d.Items = append(d.Items, confirmationItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    domain.FormatMoney(it.Price, o.Currency),
			Total:    domain.FormatMoney(it.LineTotal(), o.Currency),
		})
	}
	return d
}

func renderConfirmation(o *domain.Order) (html, text string, err error) {
	data := newConfirmationData(o)

	var hb, tb bytes.Buffer
	if err := confirmationHTML.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	if err := confirmationText.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("render text: %w", err)
	}
	return hb.String(), tb.String(), nil
}

func (s *NotificationService) SendOrderConfirmation(ctx context.Context, order *domain.Order) bool {
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	html, text, err := renderConfirmation(order)
	if err != nil {
		log.Printf("Error rendering confirmation for order %d: %v", order.ID, err)
		return false
	}

	msgs := []infra.Message{{
		To:      []string{order.Email},
		Subject: fmt.Sprintf("Order Confirmation #%d", order.ID),
		Text:    text,
		HTML:    html,
	}}
	if s.adminEmail != "" {
		msgs = append(msgs, infra.Message{
			To:      []string{s.adminEmail},
			Subject: fmt.Sprintf("NEW ORDER RECEIVED: #%d", order.ID),
			Text:    text,
			HTML:    html,
		})
	}

	if err := s.mailer.Send(ctx, msgs...); err != nil {
		log.Printf("Error sending order confirmation email to %s: %v", order.Email, err)
		return false
	}
	log.Printf("Order confirmation for order %d sent", order.ID)
	return true
}

var _ Notifier = (*NotificationService)(nil)
