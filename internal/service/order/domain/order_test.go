package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testPricing = PricingConfig{
	FreeShippingThreshold: 500000,
	ShippingFlatFee:       45000,
	TaxPercent:            9,
}

func testItem(offerID uint, quantity int, unitPrice int64) OrderItem {
	return NewOrderItem(offerID, 10, 20, "Keyboard", "keyboard", "kb.jpg", "Acme Store", []string{"Black"}, quantity, unitPrice)
}

func TestNewOrderItemComputesLineTotals(t *testing.T) {
	t.Parallel()

	item := testItem(1, 3, 120000)
	require.Equal(t, int64(360000), item.Subtotal)
	require.Equal(t, int64(0), item.Discount)
	require.Equal(t, int64(360000), item.Total)
	require.Equal(t, []string{"Black"}, item.VariantNames)
}

func TestNewOrderTotalsWithShippingFee(t *testing.T) {
	t.Parallel()

	now := time.Now()
	order := NewOrder("ORD-20260830-0001", 7, "gateway", ShippingInfo{RecipientName: "Sari"},
		[]OrderItem{testItem(1, 2, 100000)}, testPricing, now)

	require.Equal(t, int64(200000), order.Subtotal)
	require.Equal(t, int64(45000), order.ShippingCost, "below threshold pays the flat fee")
	require.Equal(t, int64(18000), order.Tax)
	require.Equal(t, order.Subtotal+order.ShippingCost+order.Tax-order.Discount, order.Total)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, PaymentPending, order.PaymentStatus)
	require.Nil(t, order.PaidAt)
}

func TestNewOrderFreeShippingAtThreshold(t *testing.T) {
	t.Parallel()

	order := NewOrder("ORD-20260830-0002", 7, "gateway", ShippingInfo{},
		[]OrderItem{testItem(1, 5, 100000)}, testPricing, time.Now())

	require.Equal(t, int64(500000), order.Subtotal)
	require.Equal(t, int64(0), order.ShippingCost, "threshold is inclusive")
}

func TestRoundedTax(t *testing.T) {
	t.Parallel()

	// 9% of 111 is 9.99 -> 10
	require.Equal(t, int64(10), RoundedTax(111, 9))
	// 9% of 100 is exactly 9
	require.Equal(t, int64(9), RoundedTax(100, 9))
	// 9% of 105 is 9.45 -> 9
	require.Equal(t, int64(9), RoundedTax(105, 9))
	require.Equal(t, int64(0), RoundedTax(0, 9))
}

func TestMarkPaidSetsTimestampOnce(t *testing.T) {
	t.Parallel()

	order := NewOrder("ORD-20260830-0003", 7, "gateway", ShippingInfo{},
		[]OrderItem{testItem(1, 1, 100000)}, testPricing, time.Now())

	first := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	order.MarkPaid("txn-1", first)
	require.Equal(t, StatusPaid, order.Status)
	require.Equal(t, PaymentCompleted, order.PaymentStatus)
	require.Equal(t, "txn-1", order.TransactionID)
	require.NotNil(t, order.PaidAt)
	require.Equal(t, first, *order.PaidAt)

	// 重复回调不应改写首次支付时间
	order.MarkPaid("txn-1", first.Add(time.Hour))
	require.Equal(t, first, *order.PaidAt)
}

func TestCancelTransitions(t *testing.T) {
	t.Parallel()

	now := time.Now()
	order := NewOrder("ORD-20260830-0004", 7, "gateway", ShippingInfo{},
		[]OrderItem{testItem(1, 1, 100000)}, testPricing, now)

	require.True(t, order.CanCancel())
	require.NoError(t, order.Cancel("changed my mind", now))
	require.Equal(t, StatusCancelled, order.Status)
	require.Equal(t, "changed my mind", order.CancelReason)

	// 已取消是终态
	require.ErrorIs(t, order.Cancel("again", now), ErrOrderNotCancellable)
}

func TestCancelRejectedForTerminalStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusDelivered, StatusCancelled} {
		order := &Order{Status: status}
		require.ErrorIs(t, order.Cancel("late", time.Now()), ErrOrderNotCancellable)
	}

	// 已发货仍然可以取消
	for _, status := range []Status{StatusPending, StatusPaid, StatusProcessing, StatusShipped} {
		order := &Order{Status: status}
		require.NoError(t, order.Cancel("ok", time.Now()))
	}
}
