package services

import (
	"context"
	"errors"
	"testing"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	"market-service/internal/logger"
	"market-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartService_Add(t *testing.T) {
	tests := []struct {
		name        string
		productID   uint64
		qty         int64
		setupMocks  func(carts *mocks.MockCartRepository, products *mocks.MockProductRepository)
		expectedErr error
	}{
		{
			name:      "merges into cart",
			productID: 1,
			qty:       2,
			setupMocks: func(carts *mocks.MockCartRepository, products *mocks.MockProductRepository) {
				products.On("FindByID", mock.Anything, uint64(1)).Return(product(1, "rice", "100", "5"), nil)
				carts.On("Add", mock.Anything, uint64(7), uint64(1), int64(2)).Return(&domain.CartItem{UserID: 7, ProductID: 1, Quantity: 5}, nil)
			},
		},
		{
			name:        "zero quantity",
			productID:   1,
			qty:         0,
			setupMocks:  func(*mocks.MockCartRepository, *mocks.MockProductRepository) {},
			expectedErr: apperr.Validation(""),
		},
		{
			name:      "unknown product",
			productID: 9,
			qty:       1,
			setupMocks: func(carts *mocks.MockCartRepository, products *mocks.MockProductRepository) {
				products.On("FindByID", mock.Anything, uint64(9)).Return(nil, nil)
			},
			expectedErr: apperr.ErrProductNotFound,
		},
		{
			name:      "store failure",
			productID: 1,
			qty:       1,
			setupMocks: func(carts *mocks.MockCartRepository, products *mocks.MockProductRepository) {
				products.On("FindByID", mock.Anything, uint64(1)).Return(product(1, "rice", "100", "5"), nil)
				carts.On("Add", mock.Anything, uint64(7), uint64(1), int64(1)).Return(nil, errors.New("boom"))
			},
			expectedErr: apperr.Unexpected("", nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts, products := new(mocks.MockCartRepository), new(mocks.MockProductRepository)
			tt.setupMocks(carts, products)

			item, err := NewCartService(carts, products, logger.Discard()).Add(context.Background(), 7, tt.productID, tt.qty)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(5), item.Quantity)
			assert.Equal(t, "rice", item.Product.Name)
		})
	}
}

func TestCartService_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name         string
		setupMocks   func(carts *mocks.MockCartRepository)
		expectedCode string
	}{
		{
			name: "updated",
			setupMocks: func(carts *mocks.MockCartRepository) {
				carts.On("SetQuantity", mock.Anything, uint64(7), uint64(1), int64(4)).Return(true, nil)
			},
		},
		{
			name: "empty cart",
			setupMocks: func(carts *mocks.MockCartRepository) {
				carts.On("SetQuantity", mock.Anything, uint64(7), uint64(1), int64(4)).Return(false, nil)
				carts.On("Items", mock.Anything, uint64(7)).Return(nil, nil)
			},
			expectedCode: apperr.CodeCartNotFound,
		},
		{
			name: "product not in cart",
			setupMocks: func(carts *mocks.MockCartRepository) {
				carts.On("SetQuantity", mock.Anything, uint64(7), uint64(1), int64(4)).Return(false, nil)
				carts.On("Items", mock.Anything, uint64(7)).Return([]domain.CartItem{{ProductID: 2}}, nil)
			},
			expectedCode: apperr.CodeCartItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := new(mocks.MockCartRepository)
			tt.setupMocks(carts)

			item, err := NewCartService(carts, new(mocks.MockProductRepository), logger.Discard()).UpdateQuantity(context.Background(), 7, 1, 4)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
				assert.Equal(t, tt.expectedCode, apperr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(4), item.Quantity)
		})
	}
}

func TestCartService_Remove(t *testing.T) {
	carts := new(mocks.MockCartRepository)
	carts.On("Remove", mock.Anything, uint64(7), uint64(1)).Return(true, nil)
	carts.On("Remove", mock.Anything, uint64(7), uint64(2)).Return(false, nil)
	carts.On("Items", mock.Anything, uint64(7)).Return([]domain.CartItem{{ProductID: 3}}, nil)
	svc := NewCartService(carts, new(mocks.MockProductRepository), logger.Discard())

	assert.NoError(t, svc.Remove(context.Background(), 7, 1))

	err := svc.Remove(context.Background(), 7, 2)
	assert.Equal(t, apperr.CodeCartItemNotFound, apperr.CodeOf(err))
}

func TestCartService_Get(t *testing.T) {
	carts := new(mocks.MockCartRepository)
	carts.On("Items", mock.Anything, uint64(7)).Return(nil, nil)

	items, err := NewCartService(carts, new(mocks.MockProductRepository), logger.Discard()).Get(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
