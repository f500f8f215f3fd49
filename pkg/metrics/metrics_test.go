package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInventoryMetrics_NilRegistererIsSafe(t *testing.T) {
	m := NewInventoryMetrics(nil)

	m.IncMovement("order_created")
	m.IncInsufficient("web")
	m.IncClamp("deallocate")
	m.SetLowStock("BOX-S", true)
}

func TestInventoryMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)

	m.IncMovement("order_created")
	m.IncMovement("order_created")
	m.IncInsufficient("")
	m.SetLowStock("BOX-S", true)

	require.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues("order_created")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.insufficient.WithLabelValues("unknown")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.lowStock.WithLabelValues("BOX-S")))
}

func TestPromotionMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPromotionMetrics(reg)

	m.IncValidation("accepted")
	m.IncValidation("rejected")
	m.IncValidation("rejected")
	m.IncRedemption("accepted")

	require.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("accepted")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("rejected")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.redemptions.WithLabelValues("accepted")))
}
