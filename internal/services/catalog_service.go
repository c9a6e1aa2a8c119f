package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	"market-service/internal/infra/imagestore"
	"market-service/internal/policy"
	"market-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultProductLimit = 12

// ImageStore keeps uploaded product and profile images.
type ImageStore interface {
	Save(r io.Reader, filename string) (string, error)
	Remove(url string) error
}

type ProductQuery struct {
	Query    string
	Category string
	MinPrice string
	MaxPrice string
	Sort     string
	Page     int
	Limit    int
}

// ProductInput carries producer edits. Nil fields are left unchanged on update.
type ProductInput struct {
	Name            *string
	Description     *string
	Category        *string
	Price           *string
	Quantity        *string
	AddToSellPost   *string
	SecondaryImages []string
}

type ProductPage struct {
	Products []domain.Product
	Page     domain.PageInfo
}

type CatalogService struct {
	products repository.ProductRepository
	images   ImageStore
	log      *logrus.Entry
}

func NewCatalogService(products repository.ProductRepository, images ImageStore, log *logrus.Entry) *CatalogService {
	return &CatalogService{products: products, images: images, log: log}
}

func optionalPrice(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := domain.ParsePrice(raw)
	if err != nil {
		return nil
	}
	return &d
}

func (s *CatalogService) page(ctx context.Context, filter repository.ProductFilter, req domain.PageRequest) (*ProductPage, error) {
	items, total, err := s.products.List(ctx, filter, req)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch products", err)
	}
	if items == nil {
		items = []domain.Product{}
	}
	return &ProductPage{Products: items, Page: domain.NewPageInfo(req, total)}, nil
}

// ListProducts searches the public catalog. Unparsable price bounds are ignored.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	filter := repository.ProductFilter{
		Query:      strings.TrimSpace(q.Query),
		Category:   strings.TrimSpace(q.Category),
		ListedOnly: true,
		MinPrice:   optionalPrice(q.MinPrice),
		MaxPrice:   optionalPrice(q.MaxPrice),
		Sort:       q.Sort,
	}
	return s.page(ctx, filter, domain.NewPageRequest(q.Page, q.Limit, defaultProductLimit))
}

func (s *CatalogService) ListByProducer(ctx context.Context, producerID uint64, page, limit int) (*ProductPage, error) {
	filter := repository.ProductFilter{ProducerID: &producerID, ListedOnly: true}
	return s.page(ctx, filter, domain.NewPageRequest(page, limit, defaultProductLimit))
}

func (s *CatalogService) find(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch product", err)
	}
	if p == nil {
		return nil, apperr.NotFound(apperr.CodeProductNotFound, "Product not found")
	}
	return p, nil
}

// GetPublicProduct hides products that are not published for sale.
func (s *CatalogService) GetPublicProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Listed() {
		return nil, apperr.NotFound(apperr.CodeProductNotFound, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.products.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch categories", err)
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

func requireSeller(actor Actor) error {
	if !policy.Allow(actor.Role, policy.Products, policy.Manage) {
		return apperr.ErrAccessDenied.With("Access denied. Producers only.")
	}
	return nil
}

func (s *CatalogService) apply(p *domain.Product, in ProductInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Validation("productName is required")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		price, err := domain.ParsePrice(*in.Price)
		if err != nil {
			return apperr.Validation("price must be a non-negative number")
		}
		p.SetPrice(price)
	}
	if in.Quantity != nil {
		p.SetStock(domain.ParseStock(*in.Quantity))
	}
	if in.AddToSellPost != nil {
		flag := strings.TrimSpace(*in.AddToSellPost)
		p.AddToSellPost = &flag
	}
	if in.SecondaryImages != nil {
		p.SecondaryImages = in.SecondaryImages
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor Actor, in ProductInput) (*domain.Product, error) {
	if err := requireSeller(actor); err != nil {
		return nil, err
	}
	if in.Name == nil || in.Price == nil {
		return nil, apperr.Validation("productName and price are required")
	}
	p := &domain.Product{ProducerID: actor.UserID}
	if err := s.apply(p, in); err != nil {
		return nil, err
	}
	if p.AddToSellPost == nil {
		flag := "yes"
		p.AddToSellPost = &flag
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperr.Unexpected("failed to create product", err)
	}
	s.log.WithFields(logrus.Fields{"product_id": p.ID, "producer_id": actor.UserID}).Info("product created")
	return p, nil
}

func (s *CatalogService) ListOwn(ctx context.Context, actor Actor, page, limit int) (*ProductPage, error) {
	if err := requireSeller(actor); err != nil {
		return nil, err
	}
	filter := repository.ProductFilter{ProducerID: &actor.UserID}
	return s.page(ctx, filter, domain.NewPageRequest(page, limit, defaultProductLimit))
}

func (s *CatalogService) own(ctx context.Context, actor Actor, id uint64) (*domain.Product, error) {
	if err := requireSeller(actor); err != nil {
		return nil, err
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ProducerID != actor.UserID {
		return nil, apperr.ErrAccessDenied.With("Access denied. This product does not belong to you.")
	}
	return p, nil
}

func (s *CatalogService) GetOwn(ctx context.Context, actor Actor, id uint64) (*domain.Product, error) {
	return s.own(ctx, actor, id)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor Actor, id uint64, in ProductInput) (*domain.Product, error) {
	p, err := s.own(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	previous := p.RawQuantity
	if err := s.apply(p, in); err != nil {
		return nil, err
	}
	if p.RawQuantity != previous {
		swapped, err := s.products.SetQuantity(ctx, p.ID, previous, p.RawQuantity)
		if err != nil {
			return nil, apperr.Unexpected("failed to update product", err)
		}
		if !swapped {
			return nil, apperr.Conflict(apperr.CodeStockContention,
				"Stock changed while the product was being edited, please reload and try again")
		}
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, apperr.Unexpected("failed to update product", err)
	}
	return p, nil
}

// DeleteProduct is allowed to the owning producer and to admins.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor Actor, id uint64) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	owner := policy.Allow(actor.Role, policy.Products, policy.Manage) && p.ProducerID == actor.UserID
	if !owner && !policy.Allow(actor.Role, policy.Products, policy.DeleteAny) {
		return apperr.ErrAccessDenied.With("Access denied. This product does not belong to you.")
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return apperr.Unexpected("failed to delete product", err)
	}
	s.removeImage(p.Image)
	return nil
}

func (s *CatalogService) removeImage(url string) {
	if s.images == nil || url == "" {
		return
	}
	if err := s.images.Remove(url); err != nil {
		s.log.WithError(err).WithField("image", url).Warn("failed to remove product image")
	}
}

// UploadImage replaces the product's primary image.
func (s *CatalogService) UploadImage(ctx context.Context, actor Actor, id uint64, r io.Reader, filename string) (*domain.Product, error) {
	p, err := s.own(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, apperr.Unexpected("image uploads are not configured", nil)
	}
	url, err := s.images.Save(r, filename)
	if errors.Is(err, imagestore.ErrUnsupportedFormat) {
		return nil, apperr.Validation("Unsupported image format. Only PNG, JPG, JPEG are allowed.")
	}
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("Failed to process image %s", filename))
	}

	old := p.Image
	p.Image = url
	if err := s.products.Update(ctx, p); err != nil {
		s.removeImage(url)
		return nil, apperr.Unexpected("failed to update product image", err)
	}
	s.removeImage(old)
	return p, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor Actor, name, icon, description string) (*domain.Category, error) {
	if !policy.Allow(actor.Role, policy.Categories, policy.Create) {
		return nil, apperr.ErrAccessDenied.With("Access denied")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Category name is required")
	}
	c := &domain.Category{Name: name, Icon: strings.TrimSpace(icon), Description: strings.TrimSpace(description)}
	err := s.products.CreateCategory(ctx, c)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Conflict(apperr.CodeDuplicate, "Category already exists")
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to create category", err)
	}
	return c, nil
}
