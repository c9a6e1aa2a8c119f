package services

import (
	"time"

	"market-service/internal/domain"
	"market-service/internal/logger"
	"market-service/internal/mocks"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func product(id uint64, name, price, qty string) *domain.Product {
	p := &domain.Product{ID: id, ProducerID: 99, Name: name, RawPrice: price, RawQuantity: qty, Image: "/img/" + name + ".jpg"}
	p.Normalize()
	return p
}

func withFlag(p *domain.Product, flag string) *domain.Product {
	p.AddToSellPost = &flag
	return p
}

func sequenceGenerator(values ...int64) *OrderIDGenerator {
	i := 0
	return &OrderIDGenerator{
		now: fixedClock,
		random: func(int64) (int64, error) {
			v := values[i%len(values)]
			i++
			return v, nil
		},
		maxAttempts: maxOrderIDAttempts,
	}
}

type orderMocks struct {
	orders   *mocks.MockOrderRepository
	products *mocks.MockProductRepository
	carts    *mocks.MockCartRepository
	pub      *mocks.MockPublisher
}

func newOrderMocks() orderMocks {
	return orderMocks{
		orders:   new(mocks.MockOrderRepository),
		products: new(mocks.MockProductRepository),
		carts:    new(mocks.MockCartRepository),
		pub:      new(mocks.MockPublisher),
	}
}

func (m orderMocks) service(opts ...OrderOption) *OrderService {
	opts = append([]OrderOption{WithOrderClock(fixedClock), WithOrderIDGenerator(sequenceGenerator(1, 2, 3, 4, 5))}, opts...)
	return NewOrderService(m.orders, m.products, m.carts, m.pub, logger.Discard(), opts...)
}

func validAddress() domain.ShippingAddress {
	return domain.ShippingAddress{FullName: "Rahim", PhoneNumber: "01711111111", Address: "House 1", City: "Dhaka"}
}

func storedOrder(orderID string, userID uint64, status domain.OrderStatus) *domain.Order {
	o := &domain.Order{
		ID:            1,
		OrderID:       orderID,
		UserID:        userID,
		OrderStatus:   status,
		PaymentStatus: domain.PaymentPending,
		PaymentMethod: domain.MethodCashOnDelivery,
		IsActive:      true,
		Items: []domain.OrderItem{
			{ID: 1, ProductID: 1, ProductName: "rice", Price: decimal.NewFromInt(100), Quantity: 2, StockReserved: true},
		},
	}
	o.RecalculateTotals()
	return o
}
