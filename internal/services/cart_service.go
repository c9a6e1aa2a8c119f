package services

import (
	"context"
	"fmt"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	"market-service/internal/repository"

	"github.com/sirupsen/logrus"
)

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	log      *logrus.Entry
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, log *logrus.Entry) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

// Add puts qty units of the product in the cart, merging with an existing line.
func (s *CartService) Add(ctx context.Context, userID, productID uint64, qty int64) (*domain.CartItem, error) {
	if productID == 0 || qty < 1 {
		return nil, apperr.Validation("Product ID and a positive quantity are required")
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, apperr.Unexpected("Error adding to cart", err)
	}
	if p == nil {
		return nil, apperr.ErrProductNotFound.With(fmt.Sprintf("Product with ID %d not found", productID))
	}
	item, err := s.carts.Add(ctx, userID, productID, qty)
	if err != nil {
		return nil, apperr.Unexpected("Error adding to cart", err)
	}
	item.Product = p
	return item, nil
}

func (s *CartService) Get(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected("Error fetching cart", err)
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

// missingLine tells an empty cart apart from a cart without the product.
func (s *CartService) missingLine(ctx context.Context, userID uint64) error {
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return apperr.Unexpected("Error updating cart", err)
	}
	if len(items) == 0 {
		return apperr.NotFound(apperr.CodeCartNotFound, "Cart not found")
	}
	return apperr.NotFound(apperr.CodeCartItemNotFound, "Product not found in cart")
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint64, qty int64) (*domain.CartItem, error) {
	if productID == 0 || qty < 1 {
		return nil, apperr.Validation("Product ID and quantity are required")
	}
	ok, err := s.carts.SetQuantity(ctx, userID, productID, qty)
	if err != nil {
		return nil, apperr.Unexpected("Error updating cart", err)
	}
	if !ok {
		return nil, s.missingLine(ctx, userID)
	}
	return &domain.CartItem{UserID: userID, ProductID: productID, Quantity: qty}, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uint64) error {
	ok, err := s.carts.Remove(ctx, userID, productID)
	if err != nil {
		return apperr.Unexpected("Error removing from cart", err)
	}
	if !ok {
		return s.missingLine(ctx, userID)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint64) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return apperr.Unexpected("Error clearing cart", err)
	}
	return nil
}
