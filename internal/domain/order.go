package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus accepts any of the known statuses, case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", NewValidationError("invalid order status", map[string]string{"status": fmt.Sprintf("unknown status %q", s)})
}

type Order struct {
	ID               uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName        string          `json:"first_name" gorm:"size:100;not null"`
	LastName         string          `json:"last_name" gorm:"size:100;not null"`
	Email            string          `json:"email" gorm:"size:254;not null"`
	Address          string          `json:"address" gorm:"type:text;not null"`
	City             string          `json:"city" gorm:"size:100;not null"`
	Country          string          `json:"country" gorm:"size:100;not null"`
	PostalCode       string          `json:"postal_code" gorm:"size:20;not null"`
	Phone            string          `json:"phone" gorm:"size:20;not null"`
	Total            decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Shipping         decimal.Decimal `json:"shipping" gorm:"type:decimal(10,2);not null"`
	Status           OrderStatus     `json:"status" gorm:"size:20;not null;default:'pending';index"`
	Currency         string          `json:"currency" gorm:"size:3;not null"`
	PaymentSessionID *string         `json:"-" gorm:"size:255;index"`
	Items            []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// MaxAmount is the largest value a decimal(10,2) money column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

// OrderItem is a frozen copy of a product line at the time of sale. Name and
// Price are never refreshed from the catalog.
type OrderItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"-" gorm:"not null;index"`
	ProductID *uint64         `json:"product" gorm:"index"`
	Product   *Product        `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
	Name      string          `json:"name" gorm:"size:255;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null;default:1"`
	ImageURL  *string         `json:"image_url" gorm:"size:500"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the line totals of the loaded items.
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Subtotal is derived from the stored totals, so it is correct even when the
// items were not loaded.
func (o *Order) Subtotal() decimal.Decimal {
	return o.Total.Sub(o.Shipping)
}

func (o *Order) CustomerName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}
