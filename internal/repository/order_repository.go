package repository

import (
	"context"

	"shop-service/internal/domain"
)

// OrderRepository returns (nil, nil) from finders when no row matches.
type OrderRepository interface {
	// CreateWithItems stores the order and all its items in one transaction.
	CreateWithItems(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) (*domain.Order, error)
	SetPaymentSession(ctx context.Context, id uint64, sessionID string) error
	// MarkPaid records the event and moves a pending order to paid. It
	// reports whether this call performed the transition.
	MarkPaid(ctx context.Context, orderID uint64, event *domain.PaymentEvent) (*domain.Order, bool, error)
}
