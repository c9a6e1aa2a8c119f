package gormrepo

import (
	"context"
	"fmt"

	"market-service/internal/domain"
	"market-service/internal/repository"

	"gorm.io/gorm"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Items(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load cart of user %d: %w", userID, err)
	}
	return items, nil
}

func (r *cartRepo) Add(ctx context.Context, userID, productID uint64, qty int64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
		if notFound(err) {
			item = domain.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
			return translate(tx.Create(&item).Error)
		}
		if err != nil {
			return err
		}
		item.Quantity += qty
		return tx.Model(&item).Update("quantity", item.Quantity).Error
	})
	if err != nil {
		return nil, fmt.Errorf("add product %d to cart of user %d: %w", productID, userID, err)
	}
	return &item, nil
}

func (r *cartRepo) SetQuantity(ctx context.Context, userID, productID uint64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return false, fmt.Errorf("update cart line: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepo) Remove(ctx context.Context, userID, productID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return false, fmt.Errorf("remove cart line: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepo) Clear(ctx context.Context, userID uint64) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart of user %d: %w", userID, err)
	}
	return nil
}
