package gormrepo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"market-service/internal/domain"
	"market-service/internal/infra/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(db.Options{Driver: db.DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func seedProduct(t *testing.T, gdb *gorm.DB, name, price, qty string) *domain.Product {
	t.Helper()
	yes := "yes"
	p := &domain.Product{
		ProducerID:    1,
		Name:          name,
		Category:      "grocery",
		RawPrice:      price,
		RawQuantity:   qty,
		AddToSellPost: &yes,
		Image:         "/uploads/" + name + ".jpg",
	}
	require.NoError(t, gdb.Create(p).Error)
	p.Normalize()
	return p
}

func reloadProduct(t *testing.T, gdb *gorm.DB, id uint64) *domain.Product {
	t.Helper()
	var p domain.Product
	require.NoError(t, gdb.First(&p, id).Error)
	return &p
}

func newOrder(seq int, userID uint64, items ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		OrderID:       fmt.Sprintf("ORD-20250101-%06d", seq),
		UserID:        userID,
		Items:         items,
		PaymentMethod: domain.MethodCashOnDelivery,
		PaymentStatus: domain.PaymentPending,
		OrderStatus:   domain.StatusPending,
		ShippingAddress: domain.ShippingAddress{
			FullName:    fmt.Sprintf("Customer %d", seq),
			PhoneNumber: fmt.Sprintf("0170000%04d", seq),
			Address:     "House 1, Road 2",
			City:        "Dhaka",
		},
		IsActive:  true,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Minute),
	}
}

func lineFor(p *domain.Product, qty int64) domain.OrderItem {
	return domain.OrderItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.UnitPrice,
		Quantity:    qty,
	}
}

func mustCreateOrder(t *testing.T, repo interface {
	Create(context.Context, *domain.Order) error
}, o *domain.Order) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), o))
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
