package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
)

type OrderEvent struct {
	OrderID   uint64          `json:"orderId"`
	Status    OrderStatus     `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	Email     string          `json:"email"`
	ItemCount int             `json:"itemCount"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewOrderEvent(o *Order) OrderEvent {
	return OrderEvent{
		OrderID:   o.ID,
		Status:    o.Status,
		Total:     o.Total,
		Currency:  o.Currency,
		Email:     o.Email,
		ItemCount: len(o.Items),
		CreatedAt: o.CreatedAt,
	}
}
