package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys of events published to the order exchange.
const (
	EventOrderCreated         = "order.created"
	EventOrderStatusChanged   = "order.status_changed"
	EventOrderCancelled       = "order.cancelled"
	EventPaymentStatusChanged = "payment.status_changed"
)

type OrderCreatedEvent struct {
	OrderID     string          `json:"orderId"`
	UserID      uint64          `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int64           `json:"itemCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   string      `json:"orderId"`
	UserID    uint64      `json:"userId"`
	Status    OrderStatus `json:"status"`
	ChangedAt time.Time   `json:"changedAt"`
}

type OrderCancelledEvent struct {
	OrderID     string      `json:"orderId"`
	UserID      uint64      `json:"userId"`
	CancelledBy CancelledBy `json:"cancelledBy"`
	Reason      string      `json:"reason,omitempty"`
	CancelledAt time.Time   `json:"cancelledAt"`
}

type PaymentStatusChangedEvent struct {
	PaymentID string              `json:"paymentId"`
	OrderID   string              `json:"orderId"`
	Status    PaymentRecordStatus `json:"status"`
	ChangedAt time.Time           `json:"changedAt"`
}
