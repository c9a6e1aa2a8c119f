package gormrepo

import (
	"context"
	"fmt"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	"market-service/internal/repository"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxStockAttempts bounds the compare-and-swap loop on a product's quantity.
const maxStockAttempts = 5

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range order.Items {
			if err := reserveStock(tx, &order.Items[i]); err != nil {
				return err
			}
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", translate(err))
		}
		if order.ID == 0 {
			return fmt.Errorf("insert order %s: no id assigned", order.OrderID)
		}
		return nil
	})
}

// reserveStock decrements a bounded product quantity. The quantity column is
// free text, so the update is conditional on the value that was read.
func reserveStock(tx *gorm.DB, item *domain.OrderItem) error {
	for attempt := 0; attempt < maxStockAttempts; attempt++ {
		var p domain.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, item.ProductID).Error
		if notFound(err) {
			return apperr.ErrProductNotFound.With(fmt.Sprintf("Product with ID %d not found", item.ProductID))
		}
		if err != nil {
			return fmt.Errorf("load product %d: %w", item.ProductID, err)
		}
		if p.Stock.Unbounded {
			item.StockReserved = false
			return nil
		}
		if !p.Stock.Covers(item.Quantity) {
			return apperr.ErrInsufficientStock.With(
				fmt.Sprintf("Product %s is not available in requested quantity", p.Name))
		}

		res := tx.Model(&domain.Product{}).
			Where("id = ? AND quantity = ?", p.ID, p.RawQuantity).
			Update("quantity", p.Stock.Take(item.Quantity).Raw())
		if res.Error != nil {
			return fmt.Errorf("reserve stock for product %d: %w", p.ID, res.Error)
		}
		if res.RowsAffected == 1 {
			item.StockReserved = true
			return nil
		}
	}
	return apperr.Conflict(apperr.CodeStockContention,
		fmt.Sprintf("stock for product %d is changing too quickly, please retry", item.ProductID))
}

func releaseStock(tx *gorm.DB, item *domain.OrderItem) error {
	for attempt := 0; attempt < maxStockAttempts; attempt++ {
		var p domain.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, item.ProductID).Error
		if notFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load product %d: %w", item.ProductID, err)
		}
		// A product switched to untracked stock since the order was placed
		// has nothing to give back to.
		if p.Stock.Unbounded {
			return nil
		}
		res := tx.Model(&domain.Product{}).
			Where("id = ? AND quantity = ?", p.ID, p.RawQuantity).
			Update("quantity", p.Stock.Put(item.Quantity).Raw())
		if res.Error != nil {
			return fmt.Errorf("release stock for product %d: %w", p.ID, res.Error)
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}
	return apperr.Conflict(apperr.CodeStockContention,
		fmt.Sprintf("stock for product %d is changing too quickly, please retry", item.ProductID))
}

func (r *orderRepo) ExistsByOrderID(ctx context.Context, orderID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("order_id = ?", orderID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count orders by order id: %w", err)
	}
	return n > 0, nil
}

func (r *orderRepo) FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	err := withItems(r.db.WithContext(ctx)).Where("order_id = ? AND is_active = ?", orderID, true).First(&o).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}
	return &o, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := withItems(r.db.WithContext(ctx)).Where("is_active = ?", true).First(&o, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	return &o, nil
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error; err != nil {
		return fmt.Errorf("save order %s: %w", order.OrderID, err)
	}
	return nil
}

func (r *orderRepo) SaveCancellation(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return fmt.Errorf("save order %s: %w", order.OrderID, err)
		}
		for i := range order.Items {
			item := &order.Items[i]
			if !item.StockReserved {
				continue
			}
			if err := releaseStock(tx, item); err != nil {
				return err
			}
			if err := tx.Model(item).UpdateColumn("stock_reserved", false).Error; err != nil {
				return fmt.Errorf("clear reservation on item %d: %w", item.ID, err)
			}
			item.StockReserved = false
		}
		return nil
	})
}

func orderScope(f repository.OrderFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_active = ?", true)
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		if f.Status != nil {
			db = db.Where("order_status = ?", *f.Status)
		}
		if f.PaymentStatus != nil {
			db = db.Where("payment_status = ?", *f.PaymentStatus)
		}
		if f.Search != "" {
			p := likePattern(f.Search)
			db = db.Where(likeAny("order_id", "shipping_full_name", "shipping_phone_number"), p, p, p)
		}
		if f.From != nil {
			db = db.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("created_at <= ?", *f.To)
		}
		return db
	}
}

func (r *orderRepo) List(ctx context.Context, filter repository.OrderFilter, page domain.PageRequest) ([]domain.Order, int64, error) {
	var (
		orders []domain.Order
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&domain.Order{}).Scopes(orderScope(filter)).Count(&total).Error
	})
	g.Go(func() error {
		return withItems(r.db.WithContext(gctx)).
			Scopes(orderScope(filter), paginate(page.Offset(), page.Limit)).
			Order("created_at DESC").Order("id DESC").
			Find(&orders).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func (r *orderRepo) StatsByStatus(ctx context.Context, userID *uint64) ([]domain.StatusTotal, error) {
	var out []domain.StatusTotal
	q := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("order_status AS status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total_amount").
		Where("is_active = ?", true)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Group("order_status").Order("order_status").Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return out, nil
}

func (r *orderRepo) Recent(ctx context.Context, userID uint64, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := withItems(r.db.WithContext(ctx)).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	return out, nil
}
