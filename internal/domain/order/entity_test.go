package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "ORD-20260314-00042", GenerateOrderNumber(ts, 42))
	assert.Equal(t, "ORD-20260314-00001", GenerateOrderNumber(ts, 1))

	// Sequences past the zero padding still produce distinct numbers
	assert.Equal(t, "ORD-20260314-123456", GenerateOrderNumber(ts, 123456))
}

func TestOrderAddOnAmount(t *testing.T) {
	o := &Order{EcoPackagingAmount: 10000, CarbonOffsetAmount: 2000}
	assert.Equal(t, int64(12000), o.AddOnAmount())

	assert.Zero(t, (&Order{}).AddOnAmount())
}

func TestOrderCanBeCancelled(t *testing.T) {
	cancellable := []OrderStatus{OrderStatusPending, OrderStatusConfirmed}
	for _, status := range cancellable {
		assert.True(t, (&Order{Status: status}).CanBeCancelled(), string(status))
	}

	final := []OrderStatus{
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
	for _, status := range final {
		assert.False(t, (&Order{Status: status}).CanBeCancelled(), string(status))
	}
}

func TestStatusTransitions(t *testing.T) {
	s := &Service{}

	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusConfirmed, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusDelivered, OrderStatusCompleted},
	}
	for _, tr := range allowed {
		assert.True(t, s.isValidStatusTransition(tr.from, tr.to),
			"%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusCompleted, OrderStatusPending},
		{OrderStatusShipped, OrderStatusShipped},
	}
	for _, tr := range denied {
		assert.False(t, s.isValidStatusTransition(tr.from, tr.to),
			"%s -> %s should be rejected", tr.from, tr.to)
	}
}
