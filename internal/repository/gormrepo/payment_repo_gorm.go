package gormrepo

import (
	"context"
	"fmt"
	"time"

	"market-service/internal/domain"
	"market-service/internal/repository"

	"gorm.io/gorm"
)

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) CreateForOrder(ctx context.Context, order *domain.Order, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		err := tx.Model(&domain.Order{}).Where("id = ?", order.ID).UpdateColumns(map[string]any{
			"payment_method": order.PaymentMethod,
			"payment_status": order.PaymentStatus,
			"updated_at":     now,
		}).Error
		if err != nil {
			return fmt.Errorf("update order %s payment fields: %w", order.OrderID, err)
		}
		order.UpdatedAt = now

		payment.OrderRowID = order.ID
		if err := tx.Omit("Order").Create(payment).Error; err != nil {
			return fmt.Errorf("insert payment: %w", translate(err))
		}
		return nil
	})
}

func (r *paymentRepo) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).
		Preload("Order").Preload("Order.Items").
		Where("payment_id = ? AND is_active = ?", paymentID, true).
		First(&p).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", paymentID, err)
	}
	return &p, nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, payment *domain.Payment, orderStatus *domain.PaymentStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		err := tx.Model(&domain.Payment{}).Where("id = ?", payment.ID).UpdateColumns(map[string]any{
			"status":     payment.Status,
			"updated_at": now,
		}).Error
		if err != nil {
			return fmt.Errorf("update payment %s: %w", payment.PaymentID, err)
		}
		payment.UpdatedAt = now

		if orderStatus == nil {
			return nil
		}
		err = tx.Model(&domain.Order{}).Where("id = ?", payment.OrderRowID).UpdateColumns(map[string]any{
			"payment_status": *orderStatus,
			"updated_at":     now,
		}).Error
		if err != nil {
			return fmt.Errorf("update order payment status for payment %s: %w", payment.PaymentID, err)
		}
		if payment.Order != nil {
			payment.Order.PaymentStatus = *orderStatus
			payment.Order.UpdatedAt = now
		}
		return nil
	})
}

func (r *paymentRepo) ListByUser(ctx context.Context, userID uint64, status *domain.PaymentRecordStatus, page domain.PageRequest) ([]domain.Payment, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ? AND is_active = ?", userID, true)
		if status != nil {
			db = db.Where("status = ?", *status)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Payment{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	var out []domain.Payment
	err := r.db.WithContext(ctx).Preload("Order").
		Scopes(scope, paginate(page.Offset(), page.Limit)).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return out, total, nil
}
