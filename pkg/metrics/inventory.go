package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics records stock movement outcomes.
type InventoryMetrics struct {
	movements    *prometheus.CounterVec
	insufficient *prometheus.CounterVec
	clamps       *prometheus.CounterVec
	lowStock     *prometheus.GaugeVec
	duration     *prometheus.HistogramVec
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_movements_total",
		Help: "Recorded inventory movements by reason.",
	}, []string{"reason"})
	insufficient := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_allocation_rejected_total",
		Help: "Allocations rejected for insufficient availability.",
	}, []string{"channel"})
	clamps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_counter_clamps_total",
		Help: "Counter updates that were clamped at zero.",
	}, []string{"operation"})
	lowStock := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inventory_low_stock",
		Help: "Whether a variant is at or below its low stock threshold.",
	}, []string{"sku"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_operation_duration_seconds",
		Help:    "Duration of stock operations by operation name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(movements, insufficient, clamps, lowStock, duration)
	return &InventoryMetrics{
		movements:    movements,
		insufficient: insufficient,
		clamps:       clamps,
		lowStock:     lowStock,
		duration:     duration,
	}
}

// IncMovement counts a recorded movement for the given reason.
func (m *InventoryMetrics) IncMovement(reason string) {
	if m == nil || m.movements == nil {
		return
	}
	m.movements.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncInsufficient counts a rejected allocation for the given channel.
func (m *InventoryMetrics) IncInsufficient(channel string) {
	if m == nil || m.insufficient == nil {
		return
	}
	m.insufficient.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncClamp counts a counter update that was clamped at zero.
func (m *InventoryMetrics) IncClamp(operation string) {
	if m == nil || m.clamps == nil {
		return
	}
	m.clamps.WithLabelValues(normalizeLabel(operation)).Inc()
}

// SetLowStock flags whether the variant is at or below its threshold.
func (m *InventoryMetrics) SetLowStock(sku string, low bool) {
	if m == nil || m.lowStock == nil {
		return
	}
	value := 0.0
	if low {
		value = 1.0
	}
	m.lowStock.WithLabelValues(normalizeLabel(sku)).Set(value)
}

// ObserveDuration records how long a stock operation took.
func (m *InventoryMetrics) ObserveDuration(operation string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(elapsed.Seconds())
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
