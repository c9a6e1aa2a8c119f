package gormrepo

import (
	"context"
	"testing"

	"market-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepo_CreateAndMirrorStatus(t *testing.T) {
	gdb := newTestDB(t)
	orders := NewOrderRepository(gdb)
	repo := NewPaymentRepository(gdb)
	ctx := context.Background()

	p := seedProduct(t, gdb, "rice", "100", "")
	o := newOrder(1, 7, lineFor(p, 2))
	o.PaymentMethod = domain.MethodBkash
	mustCreateOrder(t, orders, o)

	o.PaymentMethod = domain.MethodCashOnDelivery
	o.PaymentStatus = domain.PaymentPending
	pay := &domain.Payment{
		PaymentID: "PAY-ABC123-0001",
		UserID:    7,
		Method:    domain.RecordMethodCashOnDelivery,
		Amount:    o.TotalAmount,
		Currency:  domain.DefaultCurrency,
		Status:    domain.PaymentRecordPending,
		IsActive:  true,
	}
	require.NoError(t, repo.CreateForOrder(ctx, o, pay))
	assert.Equal(t, o.ID, pay.OrderRowID)

	stored, err := orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MethodCashOnDelivery, stored.PaymentMethod)

	found, err := repo.FindByPaymentID(ctx, pay.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.Order)
	assert.Equal(t, o.OrderID, found.Order.OrderID)

	found.Status = domain.PaymentRecordPaid
	paid := domain.PaymentPaid
	require.NoError(t, repo.UpdateStatus(ctx, found, &paid))

	stored, err = orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)

	list, total, err := repo.ListByUser(ctx, 7, nil, domain.NewPageRequest(1, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, domain.PaymentRecordPaid, list[0].Status)

	pending := domain.PaymentRecordPending
	_, total, err = repo.ListByUser(ctx, 7, &pending, domain.NewPageRequest(1, 10, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
}
