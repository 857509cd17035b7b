package domain

import "time"

const EventCheckoutSessionCompleted = "checkout.session.completed"

// MetadataOrderID is the checkout session metadata key that links a payment
// back to its order.
const MetadataOrderID = "order_id"

// PaymentEvent is a verified notification from the payment processor.
type PaymentEvent struct {
	ID        string
	Type      string
	SessionID string
	Metadata  map[string]string
}

// WebhookEvent records an event id once its effect has been applied.
type WebhookEvent struct {
	EventID     string    `gorm:"primaryKey;size:255"`
	EventType   string    `gorm:"size:64;index;not null"`
	OrderID     uint64    `gorm:"index"`
	ProcessedAt time.Time `gorm:"not null"`
}

// CheckoutSession is what the processor returns for a hosted checkout page.
type CheckoutSession struct {
	ID  string
	URL string
}
