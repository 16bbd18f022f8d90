package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderCompleted, false},
		{OrderProcessing, OrderCompleted, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderPending, false},
		{OrderCompleted, OrderCancelled, false},
		{OrderCompleted, OrderProcessing, false},
		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderCompleted, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderProcessing.Terminal())
	assert.True(t, OrderCompleted.Terminal())
	assert.True(t, OrderCancelled.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus("PROCESSING")
	assert.True(t, ok)
	assert.Equal(t, OrderProcessing, s)

	_, ok = ParseOrderStatus("SHIPPED")
	assert.False(t, ok)

	_, ok = ParseOrderStatus("pending")
	assert.False(t, ok)
}
