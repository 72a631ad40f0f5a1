package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsUnwraps(t *testing.T) {
	base := NotFound("order", 7)
	wrapped := fmt.Errorf("loading response: %w", base)

	ae, ok := As(wrapped)
	require.True(t, ok)
	require.Equal(t, KindNotFound, ae.Kind)

	_, ok = As(fmt.Errorf("plain failure"))
	require.False(t, ok)
}

func TestConstructors(t *testing.T) {
	v := Validation("invalid order", map[string]string{"cost": "must not be negative"})
	require.Equal(t, KindValidation, v.Kind)
	require.Equal(t, "must not be negative", v.Fields["cost"])

	r := Reference("aveugle_id", "patron does not exist")
	require.Equal(t, KindReference, r.Kind)
	require.Contains(t, r.Fields, "aveugle_id")

	c := Conflict("order is already billed", map[string]any{"order_id": uint(3)})
	require.Equal(t, KindConflict, c.Kind)
	require.Equal(t, uint(3), c.Details["order_id"])

	require.Equal(t, KindTransaction, Transaction("rollback").Kind)
}
