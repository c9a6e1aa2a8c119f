package repository

import (
	"context"

	"market-service/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

type ProductFilter struct {
	Query      string
	Category   string
	ProducerID *uint64
	ListedOnly bool
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
}

// PriceSensitive reports whether the filter needs normalised prices, which
// cannot be compared inside the database because the column is text.
func (f ProductFilter) PriceSensitive() bool {
	return f.MinPrice != nil || f.MaxPrice != nil || f.Sort == SortPriceAsc || f.Sort == SortPriceDesc
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	// Update writes the producer-editable columns. The quantity column is
	// owned by stock reservation and only changes through SetQuantity.
	Update(ctx context.Context, p *domain.Product) error
	// SetQuantity replaces the stored quantity if it still equals expected.
	SetQuantity(ctx context.Context, id uint64, expected, next string) (bool, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, filter ProductFilter, page domain.PageRequest) ([]domain.Product, int64, error)
	CountByProducer(ctx context.Context, producerID uint64) (int64, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}
