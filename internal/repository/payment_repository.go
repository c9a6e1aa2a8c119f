package repository

import (
	"context"

	"market-service/internal/domain"
)

type PaymentRepository interface {
	// CreateForOrder stores the order's payment fields and the new payment atomically.
	CreateForOrder(ctx context.Context, order *domain.Order, payment *domain.Payment) error
	FindByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error)
	// UpdateStatus saves the payment status and, when orderStatus is set,
	// mirrors it onto the linked order in the same transaction.
	UpdateStatus(ctx context.Context, payment *domain.Payment, orderStatus *domain.PaymentStatus) error
	ListByUser(ctx context.Context, userID uint64, status *domain.PaymentRecordStatus, page domain.PageRequest) ([]domain.Payment, int64, error)
}
