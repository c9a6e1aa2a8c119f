package gormrepo

import (
	"context"
	"testing"

	"market-service/internal/domain"
	"market-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepo_NormalisesOnLoad(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewProductRepository(gdb)
	p := seedProduct(t, gdb, "mango", "120.50", "lots")

	got, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.PriceValid)
	assert.True(t, decimal.RequireFromString("120.5").Equal(got.UnitPrice))
	assert.True(t, got.Stock.Unbounded)

	missing, err := repo.FindByID(context.Background(), 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepo_ListPriceRangeIsNumeric(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewProductRepository(gdb)
	ctx := context.Background()

	seedProduct(t, gdb, "a", "9", "1")
	seedProduct(t, gdb, "b", "100", "1")
	seedProduct(t, gdb, "c", "25", "1")
	seedProduct(t, gdb, "d", "free", "1")

	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(200)
	got, total, err := repo.List(ctx, repository.ProductFilter{
		MinPrice: &min,
		MaxPrice: &max,
		Sort:     repository.SortPriceAsc,
	}, domain.NewPageRequest(1, 10, 10))
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
}

func TestProductRepo_ListListedOnly(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewProductRepository(gdb)
	ctx := context.Background()

	seedProduct(t, gdb, "shown", "10", "1")
	hidden := seedProduct(t, gdb, "hidden", "10", "1")
	no := "no"
	hidden.AddToSellPost = &no
	require.NoError(t, repo.Update(ctx, hidden))

	got, total, err := repo.List(ctx, repository.ProductFilter{ListedOnly: true, Query: "SHO"}, domain.NewPageRequest(1, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "shown", got[0].Name)
}

func TestProductRepo_ListQueryIsLiteral(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewProductRepository(gdb)
	ctx := context.Background()

	seedProduct(t, gdb, "100% jute bag", "10", "1")
	seedProduct(t, gdb, "1000 bags", "10", "1")

	got, total, err := repo.List(ctx, repository.ProductFilter{Query: "100%"}, domain.NewPageRequest(1, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "100% jute bag", got[0].Name)

	_, total, err = repo.List(ctx, repository.ProductFilter{Query: "_"}, domain.NewPageRequest(1, 10, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestProductRepo_UpdateKeepsReservedStock(t *testing.T) {
	gdb := newTestDB(t)
	products := NewProductRepository(gdb)
	orders := NewOrderRepository(gdb)
	ctx := context.Background()

	seeded := seedProduct(t, gdb, "rice", "100", "5")
	edited, err := products.FindByID(ctx, seeded.ID)
	require.NoError(t, err)

	mustCreateOrder(t, orders, newOrder(1, 7, lineFor(seeded, 2)))
	require.Equal(t, "3", reloadProduct(t, gdb, seeded.ID).RawQuantity)

	edited.Description = "aromatic"
	edited.SetPrice(dec(120))
	require.NoError(t, products.Update(ctx, edited))

	got := reloadProduct(t, gdb, seeded.ID)
	assert.Equal(t, "3", got.RawQuantity)
	assert.Equal(t, "aromatic", got.Description)
	assert.Equal(t, "120", got.RawPrice)
}

func TestProductRepo_SetQuantity(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewProductRepository(gdb)
	ctx := context.Background()
	p := seedProduct(t, gdb, "rice", "100", "3")

	swapped, err := repo.SetQuantity(ctx, p.ID, "5", "10")
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.Equal(t, "3", reloadProduct(t, gdb, p.ID).RawQuantity)

	swapped, err = repo.SetQuantity(ctx, p.ID, "3", "10")
	require.NoError(t, err)
	assert.True(t, swapped)
	assert.Equal(t, "10", reloadProduct(t, gdb, p.ID).RawQuantity)
}

func TestProductRepo_Categories(t *testing.T) {
	repo := NewProductRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateCategory(ctx, &domain.Category{Name: "Vegetables"}))
	err := repo.CreateCategory(ctx, &domain.Category{Name: "Vegetables"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, repo.CreateCategory(ctx, &domain.Category{Name: "Fish"}))
	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Fish", cats[0].Name)
}
