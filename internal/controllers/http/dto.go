package http

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"market-service/internal/domain"
	"market-service/internal/services"

	"github.com/shopspring/decimal"
)

// flexID accepts a JSON number or a numeric string. Anything else decodes
// to zero and is rejected by the service's own validation.
type flexID uint64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexID(n)
	return nil
}

type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

type OrderItemRequest struct {
	ProductID flexID  `json:"productId"`
	Quantity  flexInt `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest      `json:"items"`
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	OrderNotes      string                  `json:"orderNotes"`
	DeliveryFee     json.RawMessage         `json:"deliveryFee"`
}

// parseDeliveryFee reads a number or numeric string. Missing or unparsable
// values yield nil, which the order engine treats as no fee.
func parseDeliveryFee(raw json.RawMessage) *decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var fee decimal.Decimal
	if err := fee.UnmarshalJSON(raw); err != nil {
		return nil
	}
	return &fee
}

func (r CreateOrderRequest) toInput() services.CreateOrderInput {
	in := services.CreateOrderInput{
		Items:         make([]services.CreateOrderItem, 0, len(r.Items)),
		PaymentMethod: domain.PaymentMethod(strings.TrimSpace(r.PaymentMethod)),
		Notes:         r.OrderNotes,
		DeliveryFee:   parseDeliveryFee(r.DeliveryFee),
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, services.CreateOrderItem{ProductID: uint64(it.ProductID), Quantity: int64(it.Quantity)})
	}
	if r.ShippingAddress != nil {
		in.ShippingAddress = *r.ShippingAddress
	}
	return in
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type InitiateCODRequest struct {
	OrderID flexString `json:"orderId"`
	Notes   string     `json:"notes"`
}

// flexString accepts either a JSON string or a number, keeping a number's
// text as sent.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(b)
	return nil
}

type OrderItemView struct {
	ProductID    uint64          `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

func itemViews(items []domain.OrderItem) []OrderItemView {
	out := make([]OrderItemView, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItemView{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			Price:        it.Price,
			Quantity:     it.Quantity,
			TotalPrice:   it.TotalPrice,
		})
	}
	return out
}

// OrderSummary is one row of an order listing.
type OrderSummary struct {
	OrderID              string                  `json:"orderId"`
	UserID               uint64                  `json:"userId,omitempty"`
	OrderStatus          domain.OrderStatus      `json:"orderStatus"`
	StatusDisplay        string                  `json:"statusDisplay"`
	PaymentMethod        domain.PaymentMethod    `json:"paymentMethod"`
	PaymentStatus        domain.PaymentStatus    `json:"paymentStatus"`
	PaymentStatusDisplay string                  `json:"paymentStatusDisplay"`
	TotalAmount          decimal.Decimal         `json:"totalAmount"`
	TotalItems           int64                   `json:"totalItems"`
	ShippingAddress      *domain.ShippingAddress `json:"shippingAddress,omitempty"`
	EstimatedDelivery    *time.Time              `json:"estimatedDelivery"`
	CreatedAt            time.Time               `json:"createdAt"`
	Items                []OrderItemView         `json:"items,omitempty"`
}

func orderSummary(o *domain.Order) OrderSummary {
	return OrderSummary{
		OrderID:              o.OrderID,
		OrderStatus:          o.OrderStatus,
		StatusDisplay:        o.OrderStatus.Display(),
		PaymentMethod:        o.PaymentMethod,
		PaymentStatus:        o.PaymentStatus,
		PaymentStatusDisplay: o.PaymentStatus.Display(),
		TotalAmount:          o.TotalAmount,
		TotalItems:           o.TotalItems(),
		EstimatedDelivery:    o.EstimatedDelivery,
		CreatedAt:            o.CreatedAt,
		Items:                itemViews(o.Items),
	}
}

// adminOrderSummary adds the customer fields admins search by.
func adminOrderSummary(o *domain.Order) OrderSummary {
	s := orderSummary(o)
	s.UserID = o.UserID
	addr := o.ShippingAddress
	s.ShippingAddress = &addr
	s.Items = nil
	return s
}

type OrderDetail struct {
	OrderID              string                 `json:"orderId"`
	OrderStatus          domain.OrderStatus     `json:"orderStatus"`
	StatusDisplay        string                 `json:"statusDisplay"`
	PaymentMethod        domain.PaymentMethod   `json:"paymentMethod"`
	PaymentStatus        domain.PaymentStatus   `json:"paymentStatus"`
	PaymentStatusDisplay string                 `json:"paymentStatusDisplay"`
	Subtotal             decimal.Decimal        `json:"subtotal"`
	DeliveryFee          decimal.Decimal        `json:"deliveryFee"`
	TotalAmount          decimal.Decimal        `json:"totalAmount"`
	TotalItems           int64                  `json:"totalItems"`
	ShippingAddress      domain.ShippingAddress `json:"shippingAddress"`
	OrderNotes           string                 `json:"orderNotes"`
	EstimatedDelivery    *time.Time             `json:"estimatedDelivery"`
	ActualDelivery       *time.Time             `json:"actualDelivery"`
	CancelledAt          *time.Time             `json:"cancelledAt"`
	CancelledBy          *domain.CancelledBy    `json:"cancelledBy"`
	CancellationReason   string                 `json:"cancellationReason"`
	IsActive             bool                   `json:"isActive"`
	CreatedAt            time.Time              `json:"createdAt"`
	UpdatedAt            time.Time              `json:"updatedAt"`
	Items                []OrderItemView        `json:"items"`
}

func orderDetail(o *domain.Order) OrderDetail {
	return OrderDetail{
		OrderID:              o.OrderID,
		OrderStatus:          o.OrderStatus,
		StatusDisplay:        o.OrderStatus.Display(),
		PaymentMethod:        o.PaymentMethod,
		PaymentStatus:        o.PaymentStatus,
		PaymentStatusDisplay: o.PaymentStatus.Display(),
		Subtotal:             o.Subtotal,
		DeliveryFee:          o.DeliveryFee,
		TotalAmount:          o.TotalAmount,
		TotalItems:           o.TotalItems(),
		ShippingAddress:      o.ShippingAddress,
		OrderNotes:           o.OrderNotes,
		EstimatedDelivery:    o.EstimatedDelivery,
		ActualDelivery:       o.ActualDelivery,
		CancelledAt:          o.CancelledAt,
		CancelledBy:          o.CancelledBy,
		CancellationReason:   o.CancellationReason,
		IsActive:             o.IsActive,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		Items:                itemViews(o.Items),
	}
}

type OrderPagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalOrders int64 `json:"totalOrders"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type OrderList struct {
	Orders     []OrderSummary  `json:"orders"`
	Pagination OrderPagination `json:"pagination"`
}

func orderList(page *services.OrderPage, view func(*domain.Order) OrderSummary) OrderList {
	out := OrderList{
		Orders: make([]OrderSummary, 0, len(page.Orders)),
		Pagination: OrderPagination{
			CurrentPage: page.Page.CurrentPage,
			TotalPages:  page.Page.TotalPages,
			TotalOrders: page.Page.Total,
			HasNextPage: page.Page.HasNextPage,
			HasPrevPage: page.Page.HasPrevPage,
		},
	}
	for i := range page.Orders {
		out.Orders = append(out.Orders, view(&page.Orders[i]))
	}
	return out
}

type RecentOrder struct {
	OrderID     string             `json:"orderId"`
	OrderStatus domain.OrderStatus `json:"orderStatus"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	TotalItems  int64              `json:"totalItems"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func recentOrders(orders []domain.Order) []RecentOrder {
	out := make([]RecentOrder, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		out = append(out, RecentOrder{
			OrderID:     o.OrderID,
			OrderStatus: o.OrderStatus,
			TotalAmount: o.TotalAmount,
			TotalItems:  o.TotalItems(),
			CreatedAt:   o.CreatedAt,
		})
	}
	return out
}

type PaymentList struct {
	Payments   []domain.Payment `json:"payments"`
	Pagination domain.PageInfo  `json:"pagination"`
}

type ProductList struct {
	Products   []domain.Product `json:"products"`
	Pagination domain.PageInfo  `json:"pagination"`
}

type ProductRequest struct {
	ProductName     *string     `json:"productName"`
	Description     *string     `json:"description"`
	Category        *string     `json:"category"`
	Price           *flexString `json:"price"`
	Quantity        *flexString `json:"quantity"`
	AddToSellPost   *string     `json:"addToSellPost"`
	SecondaryImages []string    `json:"secondaryImages"`
}

func (r ProductRequest) toInput() services.ProductInput {
	in := services.ProductInput{
		Name:            r.ProductName,
		Description:     r.Description,
		Category:        r.Category,
		AddToSellPost:   r.AddToSellPost,
		SecondaryImages: r.SecondaryImages,
	}
	if r.Price != nil {
		s := string(*r.Price)
		in.Price = &s
	}
	if r.Quantity != nil {
		s := string(*r.Quantity)
		in.Quantity = &s
	}
	return in
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type CartRequest struct {
	ProductID flexID  `json:"productId"`
	Quantity  flexInt `json:"quantity"`
}

type ReviewRequest struct {
	UserName  string  `json:"userName"`
	ProductID flexID  `json:"productId"`
	Rating    flexInt `json:"rating"`
	Comment   string  `json:"comment"`
}

type WishlistRequest struct {
	ProductID flexID `json:"productId"`
}

type WishlistList struct {
	Items          []domain.WishlistEntry `json:"items"`
	Pagination     domain.PageInfo        `json:"pagination"`
	CategoryCounts []domain.CategoryCount `json:"categoryCounts"`
}

type RegisterRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	NID          string `json:"nid"`
	Division     string `json:"division"`
	District     string `json:"district"`
	Thana        string `json:"thana"`
	Address      string `json:"address"`
	TradeLicense string `json:"tradeLicense"`
	Role         string `json:"role"`
}

func (r RegisterRequest) toInput() services.RegisterInput {
	return services.RegisterInput{
		Name:         r.Name,
		Phone:        r.Phone,
		Password:     r.Password,
		Email:        r.Email,
		NID:          r.NID,
		Division:     r.Division,
		District:     r.District,
		Thana:        r.Thana,
		Address:      r.Address,
		TradeLicense: r.TradeLicense,
		Role:         domain.Role(strings.ToLower(strings.TrimSpace(r.Role))),
	}
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type ProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	NID      string `json:"nid"`
	Division string `json:"division"`
	District string `json:"district"`
	Thana    string `json:"thana"`
	Address  string `json:"address"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserList struct {
	Users      []domain.User   `json:"users"`
	Pagination domain.PageInfo `json:"pagination"`
}
