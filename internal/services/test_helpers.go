package services

import (
	"time"

	"shop-service/internal/domain"

	"github.com/shopspring/decimal"
)

func CreateMockOrder(id uint64, status domain.OrderStatus, shipping string, items ...domain.OrderItem) *domain.Order {
	o := &domain.Order{
		ID:         id,
		FirstName:  "Jane",
		LastName:   "Doe",
		Email:      TestCustomerEmail,
		Address:    "42 Elm Street",
		City:       "Springfield",
		Country:    "US",
		PostalCode: "12345",
		Phone:      "555-0199",
		Shipping:   decimal.RequireFromString(shipping),
		Status:     status,
		Currency:   "usd",
		Items:      items,
		CreatedAt:  time.Now(),
	}
	o.Total = o.ItemsTotal().Add(o.Shipping)
	return o
}

func CreateMockOrderItem(productID uint64, name, price string, qty int) domain.OrderItem {
	return domain.OrderItem{
		ProductID: &productID,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func CreateMockProduct(id uint64, name string, price string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Description: name + " description",
		Image:       "https://cdn.example.com/" + name + ".png",
	}
}

func CreateCheckoutRequest(shipping string, items ...CheckoutItem) CheckoutRequest {
	return CheckoutRequest{
		Items:        items,
		Email:        TestCustomerEmail,
		FirstName:    "Jane",
		LastName:     "Doe",
		Address:      "42 Elm Street",
		City:         "Springfield",
		Country:      "US",
		PostalCode:   "12345",
		Phone:        "555-0199",
		ShippingCost: decimal.RequireFromString(shipping),
	}
}

const (
	TestOrderID       = uint64(7)
	TestCustomerEmail = "jane@example.com"
	TestAdminEmail    = "admin@example.com"
	TestSessionURL    = "https://checkout.stripe.com/c/pay/cs_test_1"
)
