package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRecordStatus string

const (
	PaymentRecordPending    PaymentRecordStatus = "pending"
	PaymentRecordAuthorized PaymentRecordStatus = "authorized"
	PaymentRecordPaid       PaymentRecordStatus = "paid"
	PaymentRecordFailed     PaymentRecordStatus = "failed"
	PaymentRecordRefunded   PaymentRecordStatus = "refunded"
	PaymentRecordCancelled  PaymentRecordStatus = "cancelled"
)

func (s PaymentRecordStatus) Valid() bool {
	switch s {
	case PaymentRecordPending, PaymentRecordAuthorized, PaymentRecordPaid,
		PaymentRecordFailed, PaymentRecordRefunded, PaymentRecordCancelled:
		return true
	}
	return false
}

// OrderPaymentStatus is the status mirrored onto the linked order, if any.
func (s PaymentRecordStatus) OrderPaymentStatus() (PaymentStatus, bool) {
	switch s {
	case PaymentRecordPaid:
		return PaymentPaid, true
	case PaymentRecordFailed:
		return PaymentFailed, true
	case PaymentRecordCancelled:
		return PaymentPending, true
	}
	return "", false
}

type PaymentRecordMethod string

const (
	RecordMethodCashOnDelivery PaymentRecordMethod = "cash_on_delivery"
	RecordMethodBkash          PaymentRecordMethod = "bkash"
	RecordMethodNagad          PaymentRecordMethod = "nagad"
	RecordMethodCard           PaymentRecordMethod = "card"
)

const DefaultCurrency = "BDT"

type Payment struct {
	ID                   uint64              `json:"-" gorm:"primaryKey;autoIncrement"`
	PaymentID            string              `json:"paymentId" gorm:"size:40;not null;uniqueIndex"`
	UserID               uint64              `json:"userId" gorm:"not null;index"`
	OrderRowID           uint64              `json:"-" gorm:"column:order_id;not null;index"`
	Order                *Order              `json:"order,omitempty" gorm:"foreignKey:OrderRowID"`
	Method               PaymentRecordMethod `json:"method" gorm:"size:32;not null;index"`
	Amount               decimal.Decimal     `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency             string              `json:"currency" gorm:"size:8;not null"`
	Status               PaymentRecordStatus `json:"status" gorm:"size:20;not null;index"`
	GatewayTransactionID *string             `json:"gatewayTransactionId" gorm:"size:120"`
	GatewayPayload       map[string]any      `json:"gatewayPayload" gorm:"type:text;serializer:json"`
	Notes                string              `json:"notes,omitempty" gorm:"size:500"`
	IsActive             bool                `json:"-" gorm:"not null;default:true"`
	CreatedAt            time.Time           `json:"createdAt" gorm:"index"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}
