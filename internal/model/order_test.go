package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusInPreparation, OrderStatusReadyForPickup,
		OrderStatusReadyForDelivery, OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrderStatus("SHIPPED").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusInPreparation, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPending, OrderStatusReadyForPickup, false},
		{OrderStatusInPreparation, OrderStatusReadyForPickup, true},
		{OrderStatusInPreparation, OrderStatusReadyForDelivery, true},
		{OrderStatusInPreparation, OrderStatusCancelled, true},
		{OrderStatusInPreparation, OrderStatusDelivered, false},
		{OrderStatusReadyForPickup, OrderStatusDelivered, true},
		{OrderStatusReadyForPickup, OrderStatusCancelled, true},
		{OrderStatusReadyForPickup, OrderStatusReadyForDelivery, false},
		{OrderStatusReadyForDelivery, OrderStatusDelivered, true},
		{OrderStatusReadyForDelivery, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	all := []OrderStatus{
		OrderStatusPending, OrderStatusInPreparation, OrderStatusReadyForPickup,
		OrderStatusReadyForDelivery, OrderStatusDelivered, OrderStatusCancelled,
	}
	for _, next := range all {
		assert.False(t, OrderStatusDelivered.CanTransitionTo(next))
		assert.False(t, OrderStatusCancelled.CanTransitionTo(next))
	}
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Sunday", DayName(0))
	assert.Equal(t, "Saturday", DayName(6))
	assert.Equal(t, "unknown", DayName(7))
	assert.Equal(t, "unknown", DayName(-1))
}
