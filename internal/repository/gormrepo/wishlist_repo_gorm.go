package gormrepo

import (
	"context"
	"fmt"
	"strings"

	"market-service/internal/domain"
	"market-service/internal/repository"

	"gorm.io/gorm"
)

type wishlistRepo struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) repository.WishlistRepository {
	return &wishlistRepo{db: db}
}

func (r *wishlistRepo) Create(ctx context.Context, e *domain.WishlistEntry) error {
	if err := r.db.WithContext(ctx).Omit("Product").Create(e).Error; err != nil {
		return fmt.Errorf("insert wishlist entry: %w", translate(err))
	}
	return nil
}

func (r *wishlistRepo) FindByProduct(ctx context.Context, userID, productID uint64) (*domain.WishlistEntry, error) {
	var e domain.WishlistEntry
	err := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&e).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find wishlist entry: %w", err)
	}
	return &e, nil
}

func (r *wishlistRepo) scope(userID uint64, category string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("wishlist_entries.user_id = ?", userID)
		if c := strings.TrimSpace(category); c != "" {
			db = db.Joins("JOIN products ON products.id = wishlist_entries.product_id").
				Where("LOWER(products.category) = ?", strings.ToLower(c))
		}
		return db
	}
}

func (r *wishlistRepo) List(ctx context.Context, userID uint64, category string, page domain.PageRequest) ([]domain.WishlistEntry, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.WishlistEntry{}).Scopes(r.scope(userID, category)).Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("count wishlist: %w", err)
	}
	var out []domain.WishlistEntry
	err = r.db.WithContext(ctx).Preload("Product").
		Scopes(r.scope(userID, category), paginate(page.Offset(), page.Limit)).
		Order("wishlist_entries.added_at DESC, wishlist_entries.id DESC").
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list wishlist: %w", err)
	}
	return out, total, nil
}

func (r *wishlistRepo) CategoryCounts(ctx context.Context, userID uint64) ([]domain.CategoryCount, error) {
	var out []domain.CategoryCount
	err := r.db.WithContext(ctx).Model(&domain.WishlistEntry{}).
		Select("products.category AS category, COUNT(*) AS count").
		Joins("JOIN products ON products.id = wishlist_entries.product_id").
		Where("wishlist_entries.user_id = ?", userID).
		Group("products.category").
		Order("count DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("wishlist category counts: %w", err)
	}
	return out, nil
}

func (r *wishlistRepo) Delete(ctx context.Context, userID, entryID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", entryID, userID).Delete(&domain.WishlistEntry{})
	if res.Error != nil {
		return false, fmt.Errorf("delete wishlist entry %d: %w", entryID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *wishlistRepo) Clear(ctx context.Context, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.WishlistEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear wishlist of user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
