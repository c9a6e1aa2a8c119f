package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	rabbit "market-service/internal/infra/rabbitmq"
	"market-service/internal/policy"
	"market-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	defaultLeadDays       = 5
	maxOrderNotesLen      = 500
	defaultUserOrderLimit = 10
	defaultAdminLimit     = 20
	defaultRecentLimit    = 5
	maxCreateAttempts     = 3
)

type CreateOrderItem struct {
	ProductID uint64
	Quantity  int64
}

type CreateOrderInput struct {
	Items           []CreateOrderItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   domain.PaymentMethod
	Notes           string
	DeliveryFee     *decimal.Decimal
}

type CreateOrderResult struct {
	OrderID           string               `json:"orderId"`
	TotalAmount       decimal.Decimal      `json:"totalAmount"`
	OrderStatus       domain.OrderStatus   `json:"orderStatus"`
	PaymentStatus     domain.PaymentStatus `json:"paymentStatus"`
	EstimatedDelivery *time.Time           `json:"estimatedDelivery"`
}

type OrderPage struct {
	Orders []domain.Order
	Page   domain.PageInfo
}

type AdminOrderQuery struct {
	Status        string
	PaymentStatus string
	Search        string
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

type OrderStats struct {
	Total       int64                                     `json:"total"`
	TotalAmount decimal.Decimal                           `json:"totalAmount"`
	ByStatus    map[domain.OrderStatus]domain.StatusTotal `json:"byStatus"`
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	carts     repository.CartRepository
	publisher rabbit.PublisherInterface
	ids       *OrderIDGenerator
	leadTime  time.Duration
	now       func() time.Time
	log       *logrus.Entry
}

type OrderOption func(*OrderService)

func WithDeliveryLeadDays(days int) OrderOption {
	return func(s *OrderService) {
		if days >= 0 {
			s.leadTime = time.Duration(days) * 24 * time.Hour
		}
	}
}

func WithOrderClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

func WithOrderIDGenerator(g *OrderIDGenerator) OrderOption {
	return func(s *OrderService) { s.ids = g }
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	pub rabbit.PublisherInterface,
	log *logrus.Entry,
	opts ...OrderOption,
) *OrderService {
	s := &OrderService{
		orders:    orders,
		products:  products,
		carts:     carts,
		publisher: pub,
		ids:       NewOrderIDGenerator(),
		leadTime:  defaultLeadDays * 24 * time.Hour,
		now:       time.Now,
		log:       log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func validateOrderInput(in *CreateOrderInput) error {
	if len(in.Items) == 0 {
		return apperr.Validation("Order items are required")
	}

	addr := &in.ShippingAddress
	addr.FullName = strings.TrimSpace(addr.FullName)
	addr.PhoneNumber = strings.TrimSpace(addr.PhoneNumber)
	addr.Address = strings.TrimSpace(addr.Address)
	addr.City = strings.TrimSpace(addr.City)
	addr.PostalCode = strings.TrimSpace(addr.PostalCode)
	addr.AdditionalInfo = strings.TrimSpace(addr.AdditionalInfo)
	required := []struct{ name, value string }{
		{"fullName", addr.FullName},
		{"phoneNumber", addr.PhoneNumber},
		{"address", addr.Address},
		{"city", addr.City},
	}
	for _, f := range required {
		if f.value == "" {
			return apperr.Validationf("%s is required in shipping address", f.name)
		}
	}

	if !in.PaymentMethod.ValidOrderMethod() {
		return apperr.Validation("Invalid payment method")
	}
	if utf8.RuneCountInString(in.Notes) > maxOrderNotesLen {
		return apperr.Validationf("Order notes must be at most %d characters", maxOrderNotesLen)
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return apperr.Validation("Invalid item data: productId and quantity are required")
		}
		if it.ProductID == 0 {
			return apperr.ErrProductNotFound.With("Product with ID 0 not found")
		}
	}
	return nil
}

// snapshot resolves one requested line against the catalog.
func (s *OrderService) snapshot(ctx context.Context, it CreateOrderItem) (domain.OrderItem, error) {
	p, err := s.products.FindByID(ctx, it.ProductID)
	if err != nil {
		return domain.OrderItem{}, apperr.Unexpected("failed to load product", err)
	}
	if p == nil {
		return domain.OrderItem{}, apperr.ErrProductNotFound.With(fmt.Sprintf("Product with ID %d not found", it.ProductID))
	}
	if p.Withdrawn() {
		return domain.OrderItem{}, apperr.ErrProductUnavailable.With(fmt.Sprintf("Product %s is not available", p.Name))
	}
	if !p.PriceValid {
		return domain.OrderItem{}, apperr.ErrInvalidProductData.With(fmt.Sprintf("Product %s has an invalid price", p.Name))
	}
	if !p.Stock.Covers(it.Quantity) {
		return domain.OrderItem{}, apperr.ErrInsufficientStock.With(
			fmt.Sprintf("Product %s is not available in requested quantity", p.Name))
	}
	return domain.OrderItem{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductImage: p.PrimaryImage(),
		Price:        p.UnitPrice,
		Quantity:     it.Quantity,
		TotalPrice:   p.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)),
	}, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, userID uint64, in CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateOrderInput(&in); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		item, err := s.snapshot(ctx, it)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	now := s.now()
	eta := now.Add(s.leadTime)
	order := &domain.Order{
		UserID:            userID,
		Items:             items,
		DeliveryFee:       domain.NonNegativeOrZero(in.DeliveryFee),
		PaymentMethod:     in.PaymentMethod,
		PaymentStatus:     domain.PaymentPending,
		OrderStatus:       domain.StatusPending,
		ShippingAddress:   in.ShippingAddress,
		OrderNotes:        in.Notes,
		EstimatedDelivery: &eta,
		IsActive:          true,
	}
	order.RecalculateTotals()

	if err := s.insert(ctx, order); err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx, order.Items, true)

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("order placed but cart was not cleared")
	}

	publish(ctx, s.publisher, s.log, domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   order.TotalItems(),
		CreatedAt:   order.CreatedAt,
	})

	s.log.WithFields(logrus.Fields{"order_id": order.OrderID, "user_id": userID}).Info("order created")

	return &CreateOrderResult{
		OrderID:           order.OrderID,
		TotalAmount:       order.TotalAmount,
		OrderStatus:       order.OrderStatus,
		PaymentStatus:     order.PaymentStatus,
		EstimatedDelivery: order.EstimatedDelivery,
	}, nil
}

// insert allocates an order id and persists the order. A concurrent insert
// that wins the same id sends us round again with a fresh one.
func (s *OrderService) insert(ctx context.Context, order *domain.Order) error {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		id, err := s.ids.Next(ctx, s.orders.ExistsByOrderID)
		if err != nil {
			return apperr.Unexpected("failed to allocate order id", err)
		}
		order.OrderID = id
		order.ID = 0

		err = s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.WithField("order_id", id).Warn("order id taken concurrently, retrying")
			continue
		}
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return ae
		}
		return apperr.Unexpected("failed to create order", err)
	}
	return apperr.Unexpected("failed to create order", ErrOrderIDExhausted)
}

func (s *OrderService) invalidateProducts(ctx context.Context, items []domain.OrderItem, reserved bool) {
	inv, ok := s.products.(productCacheInvalidator)
	if !ok {
		return
	}
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		if it.StockReserved == reserved {
			ids = append(ids, it.ProductID)
		}
	}
	inv.Invalidate(ctx, ids...)
}

func (s *OrderService) load(ctx context.Context, orderID string) (*domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, apperr.Validation("Order ID is required")
	}
	o, err := s.orders.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperr.Unexpected("failed to load order", err)
	}
	if o == nil {
		return nil, apperr.ErrOrderNotFound.With("Order not found")
	}
	return o, nil
}

var errNotYourOrder = apperr.ErrAccessDenied.With("Access denied. This order does not belong to you.")

func (s *OrderService) GetByOrderID(ctx context.Context, actor Actor, orderID string) (*domain.Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(actor.UserID) && !policy.Allow(actor.Role, policy.Orders, policy.ReadAny) {
		return nil, errNotYourOrder
	}
	return o, nil
}

func (s *OrderService) Cancel(ctx context.Context, actor Actor, orderID, reason string) (*domain.Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	by := domain.CancelledByCustomer
	if policy.Allow(actor.Role, policy.Orders, policy.CancelAny) {
		by = domain.CancelledByAdmin
	} else if !o.OwnedBy(actor.UserID) {
		return nil, errNotYourOrder
	}

	switch err := o.Cancel(by, strings.TrimSpace(reason), s.now()); {
	case errors.Is(err, domain.ErrOrderAlreadyCancelled):
		return nil, apperr.ErrAlreadyCancelled.With("Order is already cancelled")
	case errors.Is(err, domain.ErrOrderDelivered):
		return nil, apperr.ErrCannotCancelDelivered.With("Cannot cancel delivered order")
	case err != nil:
		return nil, apperr.Unexpected("failed to cancel order", err)
	}

	// captured before the repository clears the flags
	released := reservedItems(o.Items)
	if err := s.orders.SaveCancellation(ctx, o); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apperr.Unexpected("failed to cancel order", err)
	}
	s.invalidateProducts(ctx, released, true)

	publish(ctx, s.publisher, s.log, domain.EventOrderCancelled, domain.OrderCancelledEvent{
		OrderID:     o.OrderID,
		UserID:      o.UserID,
		CancelledBy: by,
		Reason:      o.CancellationReason,
		CancelledAt: *o.CancelledAt,
	})
	return o, nil
}

func reservedItems(items []domain.OrderItem) []domain.OrderItem {
	var out []domain.OrderItem
	for _, it := range items {
		if it.StockReserved {
			out = append(out, it)
		}
	}
	return out
}

// UpdateStatus sets any known status on an open order. Moving to cancelled
// this way returns reserved stock but records no cancellation metadata.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID, status string) (*domain.Order, error) {
	if !policy.Allow(actor.Role, policy.Orders, policy.UpdateStatus) {
		return nil, apperr.ErrAccessDenied.With("Access denied. Admins only.")
	}
	if strings.TrimSpace(status) == "" {
		return nil, apperr.Validation("Status is required")
	}
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	previous := o.OrderStatus
	switch err := o.UpdateStatus(domain.OrderStatus(status), now); {
	case errors.Is(err, domain.ErrOrderAlreadyCancelled):
		return nil, apperr.ErrAlreadyCancelled.With("Order is cancelled and its status can no longer change")
	case errors.Is(err, domain.ErrOrderDelivered):
		return nil, apperr.ErrCannotCancelDelivered.With("Order is delivered and its status can no longer change")
	case err != nil:
		return nil, apperr.ErrInvalidStatus.With(fmt.Sprintf("Invalid order status: %s", status))
	}
	if previous == o.OrderStatus && previous.Terminal() {
		return o, nil
	}

	if o.OrderStatus == domain.StatusCancelled {
		released := reservedItems(o.Items)
		err = s.orders.SaveCancellation(ctx, o)
		if err == nil {
			s.invalidateProducts(ctx, released, true)
		}
	} else {
		err = s.orders.Save(ctx, o)
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to update order status", err)
	}

	publish(ctx, s.publisher, s.log, domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   o.OrderID,
		UserID:    o.UserID,
		Status:    o.OrderStatus,
		ChangedAt: now,
	})
	return o, nil
}

func parseOrderStatus(raw string) *domain.OrderStatus {
	st := domain.OrderStatus(strings.TrimSpace(raw))
	if !st.Valid() {
		return nil
	}
	return &st
}

func parsePaymentStatus(raw string) *domain.PaymentStatus {
	st := domain.PaymentStatus(strings.TrimSpace(raw))
	if !st.Valid() {
		return nil
	}
	return &st
}

// ListForUser pages through the caller's orders. Unknown status filters are ignored.
func (s *OrderService) ListForUser(ctx context.Context, userID uint64, status string, page, limit int) (*OrderPage, error) {
	req := domain.NewPageRequest(page, limit, defaultUserOrderLimit)
	filter := repository.OrderFilter{UserID: &userID, Status: parseOrderStatus(status)}
	return s.list(ctx, filter, req)
}

func (s *OrderService) ListAll(ctx context.Context, actor Actor, q AdminOrderQuery) (*OrderPage, error) {
	if !policy.Allow(actor.Role, policy.Orders, policy.ReadAny) {
		return nil, apperr.ErrAccessDenied.With("Access denied. Admins only.")
	}
	req := domain.NewPageRequest(q.Page, q.Limit, defaultAdminLimit)
	filter := repository.OrderFilter{
		Status:        parseOrderStatus(q.Status),
		PaymentStatus: parsePaymentStatus(q.PaymentStatus),
		Search:        strings.TrimSpace(q.Search),
		From:          q.From,
		To:            q.To,
	}
	return s.list(ctx, filter, req)
}

func (s *OrderService) list(ctx context.Context, filter repository.OrderFilter, req domain.PageRequest) (*OrderPage, error) {
	orders, total, err := s.orders.List(ctx, filter, req)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch orders", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return &OrderPage{Orders: orders, Page: domain.NewPageInfo(req, total)}, nil
}

func (s *OrderService) Stats(ctx context.Context, userID *uint64) (*OrderStats, error) {
	rows, err := s.orders.StatsByStatus(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch order statistics", err)
	}
	out := &OrderStats{TotalAmount: decimal.Zero, ByStatus: make(map[domain.OrderStatus]domain.StatusTotal, len(rows))}
	for _, r := range rows {
		out.Total += r.Count
		out.TotalAmount = out.TotalAmount.Add(r.TotalAmount)
		out.ByStatus[r.Status] = r
	}
	return out, nil
}

func (s *OrderService) Recent(ctx context.Context, userID uint64, limit int) ([]domain.Order, error) {
	if limit < 1 {
		limit = defaultRecentLimit
	}
	if limit > domain.MaxPageLimit {
		limit = domain.MaxPageLimit
	}
	orders, err := s.orders.Recent(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch recent orders", err)
	}
	return orders, nil
}
