package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNeedsReturn(t *testing.T) {
	closed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, (&OrderModel{LentPhysicalBook: true}).NeedsReturn())
	require.False(t, (&OrderModel{LentPhysicalBook: true, ClosureDate: &closed}).NeedsReturn())
	require.False(t, (&OrderModel{LentPhysicalBook: false}).NeedsReturn())
}

func TestIsValidDeliveryMethod(t *testing.T) {
	require.True(t, IsValidDeliveryMethod(DeliveryPickup))
	require.True(t, IsValidDeliveryMethod(DeliveryMail))
	require.True(t, IsValidDeliveryMethod(DeliveryNone))
	require.False(t, IsValidDeliveryMethod("courier"))
	require.False(t, IsValidDeliveryMethod(""))
}
