package gormrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"market-service/internal/domain"
	"market-service/internal/repository"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return &p, nil
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("insert product: %w", translate(err))
	}
	return nil
}

// editableColumns excludes quantity so a stale copy of the row cannot undo
// a reservation made after it was read.
var editableColumns = []string{
	"product_name", "description", "category", "price",
	"add_to_sell_post", "image", "secondary_images", "updated_at",
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	err := r.db.WithContext(ctx).Model(p).Select(editableColumns).Updates(p).Error
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, translate(err))
	}
	return nil
}

func (r *productRepo) SetQuantity(ctx context.Context, id uint64, expected, next string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND quantity = ?", id, expected).
		Update("quantity", next)
	if res.Error != nil {
		return false, fmt.Errorf("set quantity of product %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) Delete(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Product{}, id).Error; err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

func productScope(f repository.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ListedOnly {
			db = db.Where("LOWER(TRIM(add_to_sell_post)) LIKE ?", "yes%")
		}
		if f.ProducerID != nil {
			db = db.Where("producer_id = ?", *f.ProducerID)
		}
		if c := strings.TrimSpace(f.Category); c != "" {
			db = db.Where("LOWER(category) = ?", strings.ToLower(c))
		}
		if f.Query != "" {
			p := likePattern(f.Query)
			db = db.Where(likeAny("product_name", "description"), p, p)
		}
		return db
	}
}

func sortClause(s string) string {
	if s == repository.SortName {
		return "product_name ASC, id ASC"
	}
	return "created_at DESC, id DESC"
}

func (r *productRepo) List(ctx context.Context, filter repository.ProductFilter, page domain.PageRequest) ([]domain.Product, int64, error) {
	if filter.PriceSensitive() {
		return r.listByPrice(ctx, filter, page)
	}

	var (
		products []domain.Product
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&domain.Product{}).Scopes(productScope(filter)).Count(&total).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).
			Scopes(productScope(filter), paginate(page.Offset(), page.Limit)).
			Order(sortClause(filter.Sort)).
			Find(&products).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// listByPrice filters and sorts on normalised prices in memory. Rows whose
// price does not parse are left out of price-bounded results.
func (r *productRepo) listByPrice(ctx context.Context, filter repository.ProductFilter, page domain.PageRequest) ([]domain.Product, int64, error) {
	var all []domain.Product
	err := r.db.WithContext(ctx).Scopes(productScope(filter)).Order("created_at DESC, id DESC").Find(&all).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	matched := all[:0]
	for _, p := range all {
		if !p.PriceValid {
			continue
		}
		if filter.MinPrice != nil && p.UnitPrice.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && p.UnitPrice.GreaterThan(*filter.MaxPrice) {
			continue
		}
		matched = append(matched, p)
	}

	switch filter.Sort {
	case repository.SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].UnitPrice.LessThan(matched[j].UnitPrice) })
	case repository.SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].UnitPrice.GreaterThan(matched[j].UnitPrice) })
	case repository.SortName:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	}

	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *productRepo) CountByProducer(ctx context.Context, producerID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("producer_id = ?", producerID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count products of producer %d: %w", producerID, err)
	}
	return n, nil
}

func (r *productRepo) CreateCategory(ctx context.Context, c *domain.Category) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("insert category: %w", translate(err))
	}
	return nil
}

func (r *productRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}
