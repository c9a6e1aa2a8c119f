package repository

import (
	"context"

	"market-service/internal/domain"
)

type CartRepository interface {
	Items(ctx context.Context, userID uint64) ([]domain.CartItem, error)
	// Add merges qty into the existing line or creates it.
	Add(ctx context.Context, userID, productID uint64, qty int64) (*domain.CartItem, error)
	// SetQuantity reports false when the user has no line for productID.
	SetQuantity(ctx context.Context, userID, productID uint64, qty int64) (bool, error)
	Remove(ctx context.Context, userID, productID uint64) (bool, error)
	Clear(ctx context.Context, userID uint64) error
}
