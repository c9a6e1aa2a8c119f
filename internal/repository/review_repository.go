package repository

import (
	"context"

	"market-service/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	ListByProduct(ctx context.Context, productID uint64) ([]domain.Review, error)
	ListByUserName(ctx context.Context, userName string, productID *uint64) ([]domain.Review, error)
}
