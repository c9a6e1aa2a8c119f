package repository

import (
	"context"
	"time"

	"market-service/internal/domain"
)

// OrderFilter narrows order listings. Nil fields are not applied.
type OrderFilter struct {
	UserID        *uint64
	Status        *domain.OrderStatus
	PaymentStatus *domain.PaymentStatus
	Search        string
	From          *time.Time
	To            *time.Time
}

// OrderRepository persists orders together with their line items. Finders
// return (nil, nil) when no row matches.
type OrderRepository interface {
	// Create inserts the order and reserves bounded stock for every line in
	// the same transaction.
	Create(ctx context.Context, order *domain.Order) error
	ExistsByOrderID(ctx context.Context, orderID string) (bool, error)
	// FindByOrderID and FindByID return nil for unknown or deactivated orders.
	FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	// Save writes the order row without touching line items.
	Save(ctx context.Context, order *domain.Order) error
	// SaveCancellation writes a cancelled order and releases its reserved stock.
	SaveCancellation(ctx context.Context, order *domain.Order) error
	List(ctx context.Context, filter OrderFilter, page domain.PageRequest) ([]domain.Order, int64, error)
	StatsByStatus(ctx context.Context, userID *uint64) ([]domain.StatusTotal, error)
	Recent(ctx context.Context, userID uint64, limit int) ([]domain.Order, error)
}
