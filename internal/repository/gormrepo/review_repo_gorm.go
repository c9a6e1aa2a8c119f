package gormrepo

import (
	"context"
	"fmt"

	"market-service/internal/domain"
	"market-service/internal/repository"

	"gorm.io/gorm"
)

type reviewRepo struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	if err := r.db.WithContext(ctx).Create(rv).Error; err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID uint64) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC, id DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews of product %d: %w", productID, err)
	}
	return out, nil
}

func (r *reviewRepo) ListByUserName(ctx context.Context, userName string, productID *uint64) ([]domain.Review, error) {
	q := r.db.WithContext(ctx).Where("user_name = ?", userName)
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	var out []domain.Review
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list reviews by %s: %w", userName, err)
	}
	return out, nil
}
