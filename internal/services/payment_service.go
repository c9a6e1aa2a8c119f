package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	rabbit "market-service/internal/infra/rabbitmq"
	"market-service/internal/policy"
	"market-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultPaymentLimit = 10

type InitiatePaymentResult struct {
	PaymentID string                     `json:"paymentId"`
	Status    domain.PaymentRecordStatus `json:"status"`
	Amount    decimal.Decimal            `json:"amount"`
}

type PaymentStatusResult struct {
	PaymentID string                     `json:"paymentId"`
	Status    domain.PaymentRecordStatus `json:"status"`
}

type PaymentPage struct {
	Payments []domain.Payment
	Page     domain.PageInfo
}

type PaymentService struct {
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	publisher rabbit.PublisherInterface
	now       func() time.Time
	log       *logrus.Entry
}

func NewPaymentService(
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	pub rabbit.PublisherInterface,
	log *logrus.Entry,
) *PaymentService {
	return &PaymentService{payments: payments, orders: orders, publisher: pub, now: time.Now, log: log}
}

// resolveOrder accepts either the numeric row id or the human order id.
func (s *PaymentService) resolveOrder(ctx context.Context, ref string) (*domain.Order, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return s.orders.FindByID(ctx, id)
	}
	return s.orders.FindByOrderID(ctx, ref)
}

// InitiateCOD switches the order to cash on delivery and opens a pending
// payment for its full amount.
func (s *PaymentService) InitiateCOD(ctx context.Context, userID uint64, orderRef, notes string) (*InitiatePaymentResult, error) {
	orderRef = strings.TrimSpace(orderRef)
	if orderRef == "" {
		return nil, apperr.Validation("orderId is required")
	}

	order, err := s.resolveOrder(ctx, orderRef)
	if err != nil {
		return nil, apperr.Unexpected("failed to initiate payment", err)
	}
	if order == nil {
		return nil, apperr.ErrOrderNotFound.With("Order not found")
	}
	if !order.OwnedBy(userID) {
		return nil, apperr.ErrAccessDenied.With("Access denied")
	}

	order.PaymentMethod = domain.MethodCashOnDelivery
	order.PaymentStatus = domain.PaymentPending

	var payment *domain.Payment
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		paymentID, err := NewPaymentID(s.now())
		if err != nil {
			return nil, apperr.Unexpected("failed to initiate payment", err)
		}
		payment = &domain.Payment{
			PaymentID: paymentID,
			UserID:    userID,
			Method:    domain.RecordMethodCashOnDelivery,
			Amount:    order.TotalAmount,
			Currency:  domain.DefaultCurrency,
			Status:    domain.PaymentRecordPending,
			Notes:     strings.TrimSpace(notes),
			IsActive:  true,
		}
		err = s.payments.CreateForOrder(ctx, order, payment)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) || attempt == maxCreateAttempts-1 {
			return nil, apperr.Unexpected("failed to initiate payment", err)
		}
	}

	s.log.WithFields(logrus.Fields{"payment_id": payment.PaymentID, "order_id": order.OrderID}).Info("cod payment initiated")
	return &InitiatePaymentResult{PaymentID: payment.PaymentID, Status: payment.Status, Amount: payment.Amount}, nil
}

func (s *PaymentService) load(ctx context.Context, paymentID string) (*domain.Payment, error) {
	p, err := s.payments.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch payment", err)
	}
	if p == nil {
		return nil, apperr.ErrPaymentNotFound.With("Payment not found")
	}
	return p, nil
}

// UpdateStatus records a new payment status and mirrors it onto the linked
// order where a mapping exists.
func (s *PaymentService) UpdateStatus(ctx context.Context, actor Actor, paymentID, status string) (*PaymentStatusResult, error) {
	if !policy.Allow(actor.Role, policy.Payments, policy.UpdateStatus) {
		return nil, apperr.ErrAccessDenied.With("Access denied. Admins only.")
	}
	paymentID = strings.TrimSpace(paymentID)
	status = strings.TrimSpace(status)
	if paymentID == "" || status == "" {
		return nil, apperr.Validation("paymentId and status are required")
	}
	next := domain.PaymentRecordStatus(status)
	if !next.Valid() {
		return nil, apperr.ErrInvalidStatus.With("Invalid payment status: " + status)
	}

	p, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	p.Status = next

	var mirrored *domain.PaymentStatus
	if st, ok := next.OrderPaymentStatus(); ok {
		mirrored = &st
	}
	if err := s.payments.UpdateStatus(ctx, p, mirrored); err != nil {
		return nil, apperr.Unexpected("failed to update payment", err)
	}

	orderID := strconv.FormatUint(p.OrderRowID, 10)
	if p.Order != nil {
		orderID = p.Order.OrderID
	}
	publish(ctx, s.publisher, s.log, domain.EventPaymentStatusChanged, domain.PaymentStatusChangedEvent{
		PaymentID: p.PaymentID,
		OrderID:   orderID,
		Status:    p.Status,
		ChangedAt: s.now(),
	})
	return &PaymentStatusResult{PaymentID: p.PaymentID, Status: p.Status}, nil
}

func (s *PaymentService) Get(ctx context.Context, actor Actor, paymentID string) (*domain.Payment, error) {
	p, err := s.load(ctx, strings.TrimSpace(paymentID))
	if err != nil {
		return nil, err
	}
	if p.UserID != actor.UserID && !policy.Allow(actor.Role, policy.Payments, policy.ReadAny) {
		return nil, apperr.ErrAccessDenied.With("Access denied")
	}
	return p, nil
}

// ListMine pages through the caller's payments. Unknown status filters are ignored.
func (s *PaymentService) ListMine(ctx context.Context, userID uint64, status string, page, limit int) (*PaymentPage, error) {
	req := domain.NewPageRequest(page, limit, defaultPaymentLimit)
	var filter *domain.PaymentRecordStatus
	if st := domain.PaymentRecordStatus(strings.TrimSpace(status)); st.Valid() {
		filter = &st
	}
	items, total, err := s.payments.ListByUser(ctx, userID, filter, req)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch payments", err)
	}
	if items == nil {
		items = []domain.Payment{}
	}
	return &PaymentPage{Payments: items, Page: domain.NewPageInfo(req, total)}, nil
}
