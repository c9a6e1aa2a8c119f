package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	"market-service/internal/repository"

	"github.com/sirupsen/logrus"
)

const defaultWishlistLimit = 20

type WishlistPage struct {
	Items          []domain.WishlistEntry
	Page           domain.PageInfo
	CategoryCounts []domain.CategoryCount
}

type WishlistStatus struct {
	IsWishlisted bool    `json:"isWishlisted"`
	WishlistID   *uint64 `json:"wishlistId,omitempty"`
}

type WishlistService struct {
	wishlist repository.WishlistRepository
	products repository.ProductRepository
	now      func() time.Time
	log      *logrus.Entry
}

func NewWishlistService(wishlist repository.WishlistRepository, products repository.ProductRepository, log *logrus.Entry) *WishlistService {
	return &WishlistService{wishlist: wishlist, products: products, now: time.Now, log: log}
}

var errAlreadyWishlisted = apperr.Conflict(apperr.CodeDuplicate, "Product already in wishlist")

func (s *WishlistService) Add(ctx context.Context, userID, productID uint64) (*domain.WishlistEntry, error) {
	if productID == 0 {
		return nil, apperr.Validation("Product ID is required")
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, apperr.Unexpected("failed to add to wishlist", err)
	}
	if p == nil {
		return nil, apperr.NotFound(apperr.CodeProductNotFound, "Product not found")
	}

	existing, err := s.wishlist.FindByProduct(ctx, userID, productID)
	if err != nil {
		return nil, apperr.Unexpected("failed to add to wishlist", err)
	}
	if existing != nil {
		return nil, errAlreadyWishlisted
	}

	e := &domain.WishlistEntry{UserID: userID, ProductID: productID, AddedAt: s.now()}
	err = s.wishlist.Create(ctx, e)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, errAlreadyWishlisted
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to add to wishlist", err)
	}
	e.Product = p
	return e, nil
}

// List pages through the wishlist. A category of "all" applies no filter.
func (s *WishlistService) List(ctx context.Context, userID uint64, category string, page, limit int) (*WishlistPage, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, "all") {
		category = ""
	}
	req := domain.NewPageRequest(page, limit, defaultWishlistLimit)

	items, total, err := s.wishlist.List(ctx, userID, category, req)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch wishlist", err)
	}
	counts, err := s.wishlist.CategoryCounts(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch wishlist", err)
	}
	if items == nil {
		items = []domain.WishlistEntry{}
	}
	if counts == nil {
		counts = []domain.CategoryCount{}
	}
	return &WishlistPage{Items: items, Page: domain.NewPageInfo(req, total), CategoryCounts: counts}, nil
}

func (s *WishlistService) Check(ctx context.Context, userID, productID uint64) (*WishlistStatus, error) {
	if productID == 0 {
		return nil, apperr.Validation("Invalid product ID format")
	}
	e, err := s.wishlist.FindByProduct(ctx, userID, productID)
	if err != nil {
		return nil, apperr.Unexpected("failed to check wishlist", err)
	}
	if e == nil {
		return &WishlistStatus{}, nil
	}
	return &WishlistStatus{IsWishlisted: true, WishlistID: &e.ID}, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, entryID uint64) error {
	ok, err := s.wishlist.Delete(ctx, userID, entryID)
	if err != nil {
		return apperr.Unexpected("failed to remove from wishlist", err)
	}
	if !ok {
		return apperr.NotFound(apperr.CodeWishlistItemNotFound, "Wishlist item not found or not authorized to delete")
	}
	return nil
}

func (s *WishlistService) Clear(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.wishlist.Clear(ctx, userID)
	if err != nil {
		return 0, apperr.Unexpected("failed to clear wishlist", err)
	}
	return n, nil
}
