package repository

import (
	"context"

	"market-service/internal/domain"
)

type WishlistRepository interface {
	Create(ctx context.Context, e *domain.WishlistEntry) error
	FindByProduct(ctx context.Context, userID, productID uint64) (*domain.WishlistEntry, error)
	List(ctx context.Context, userID uint64, category string, page domain.PageRequest) ([]domain.WishlistEntry, int64, error)
	CategoryCounts(ctx context.Context, userID uint64) ([]domain.CategoryCount, error)
	Delete(ctx context.Context, userID, entryID uint64) (bool, error)
	Clear(ctx context.Context, userID uint64) (int64, error)
}
