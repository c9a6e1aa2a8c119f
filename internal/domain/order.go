package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusProcessing:
		return "Processing"
	case StatusShipped:
		return "Shipped"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

type PaymentMethod string

const (
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	MethodBkash          PaymentMethod = "bkash"
	MethodNagad          PaymentMethod = "nagad"
	MethodRocket         PaymentMethod = "rocket"
)

// ValidOrderMethod reports whether m can be chosen when placing an order.
func (m PaymentMethod) ValidOrderMethod() bool {
	switch m {
	case MethodCashOnDelivery, MethodBkash, MethodNagad, MethodRocket:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) Display() string {
	switch s {
	case PaymentPending:
		return "Pending"
	case PaymentPaid:
		return "Paid"
	case PaymentFailed:
		return "Failed"
	case PaymentRefunded:
		return "Refunded"
	}
	return string(s)
}

type CancelledBy string

const (
	CancelledByCustomer CancelledBy = "customer"
	CancelledByAdmin    CancelledBy = "admin"
	CancelledBySystem   CancelledBy = "system"
)

type ShippingAddress struct {
	FullName       string `json:"fullName" gorm:"size:120"`
	PhoneNumber    string `json:"phoneNumber" gorm:"size:40;index"`
	Address        string `json:"address" gorm:"size:255"`
	City           string `json:"city" gorm:"size:80"`
	PostalCode     string `json:"postalCode,omitempty" gorm:"size:20"`
	AdditionalInfo string `json:"additionalInfo,omitempty" gorm:"size:255"`
}

// OrderItem is the immutable snapshot of a product taken when the order was placed.
type OrderItem struct {
	ID            uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID       uint64          `json:"-" gorm:"not null;index"`
	ProductID     uint64          `json:"productId" gorm:"not null;index"`
	ProductName   string          `json:"productName" gorm:"size:255;not null"`
	ProductImage  string          `json:"productImage" gorm:"size:512"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity      int64           `json:"quantity" gorm:"not null"`
	TotalPrice    decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	StockReserved bool            `json:"-" gorm:"not null;default:false"`
}

type Order struct {
	ID                 uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID            string          `json:"orderId" gorm:"size:32;not null;uniqueIndex"`
	UserID             uint64          `json:"userId" gorm:"not null;index"`
	Items              []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal           decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	DeliveryFee        decimal.Decimal `json:"deliveryFee" gorm:"type:decimal(12,2);not null"`
	TotalAmount        decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	PaymentMethod      PaymentMethod   `json:"paymentMethod" gorm:"size:32;not null"`
	PaymentStatus      PaymentStatus   `json:"paymentStatus" gorm:"size:20;not null;index"`
	OrderStatus        OrderStatus     `json:"orderStatus" gorm:"size:20;not null;index"`
	ShippingAddress    ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	OrderNotes         string          `json:"orderNotes" gorm:"size:500"`
	EstimatedDelivery  *time.Time      `json:"estimatedDelivery"`
	ActualDelivery     *time.Time      `json:"actualDelivery"`
	CancelledAt        *time.Time      `json:"cancelledAt"`
	CancelledBy        *CancelledBy    `json:"cancelledBy" gorm:"size:20"`
	CancellationReason string          `json:"cancellationReason" gorm:"size:500"`
	IsActive           bool            `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt          time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

var errOrderWithoutItems = errors.New("order has no line items")

// BeforeSave enforces the totals invariant on every persist.
func (o *Order) BeforeSave(tx *gorm.DB) error {
	if len(o.Items) == 0 {
		return errOrderWithoutItems
	}
	o.RecalculateTotals()
	return nil
}

// RecalculateTotals recomputes line totals, subtotal and total amount.
func (o *Order) RecalculateTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		it := &o.Items[i]
		it.TotalPrice = it.Price.Mul(decimal.NewFromInt(it.Quantity))
		subtotal = subtotal.Add(it.TotalPrice)
	}
	if o.DeliveryFee.IsNegative() {
		o.DeliveryFee = decimal.Zero
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Add(o.DeliveryFee)
}

func (o *Order) TotalItems() int64 {
	var n int64
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// OwnedBy reports whether userID placed the order.
func (o *Order) OwnedBy(userID uint64) bool {
	return o.UserID == userID
}

// UpdateStatus moves the order to status. Unknown values leave the order
// untouched, and a delivered or cancelled order cannot move anywhere else.
// Repeating the current terminal status is a no-op.
func (o *Order) UpdateStatus(status OrderStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidOrderStatus
	}
	if o.OrderStatus.Terminal() {
		switch {
		case status == o.OrderStatus:
			return nil
		case o.OrderStatus == StatusCancelled:
			return ErrOrderAlreadyCancelled
		default:
			return ErrOrderDelivered
		}
	}
	o.OrderStatus = status
	if status == StatusDelivered {
		o.ActualDelivery = &now
	}
	return nil
}

// Cancel moves a non-terminal order to cancelled and records who did it.
func (o *Order) Cancel(by CancelledBy, reason string, now time.Time) error {
	switch o.OrderStatus {
	case StatusCancelled:
		return ErrOrderAlreadyCancelled
	case StatusDelivered:
		return ErrOrderDelivered
	}
	o.OrderStatus = StatusCancelled
	o.CancelledAt = &now
	o.CancelledBy = &by
	o.CancellationReason = reason
	return nil
}

var (
	ErrInvalidOrderStatus    = errors.New("invalid order status")
	ErrOrderAlreadyCancelled = errors.New("order is already cancelled")
	ErrOrderDelivered        = errors.New("order is already delivered")
)

// StatusTotal is one row of the per-status order aggregate.
type StatusTotal struct {
	Status      OrderStatus     `json:"status"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
