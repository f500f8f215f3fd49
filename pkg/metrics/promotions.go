package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromotionMetrics records coupon validation and redemption outcomes.
type PromotionMetrics struct {
	validations *prometheus.CounterVec
	redemptions *prometheus.CounterVec
}

// NewPromotionMetrics registers the promotion metrics on the provided registerer.
func NewPromotionMetrics(reg prometheus.Registerer) *PromotionMetrics {
	if reg == nil {
		return &PromotionMetrics{}
	}
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promotion_coupon_validations_total",
		Help: "Coupon validation attempts by result.",
	}, []string{"result"})
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promotion_coupon_redemptions_total",
		Help: "Coupon redemptions by result.",
	}, []string{"result"})
	reg.MustRegister(validations, redemptions)
	return &PromotionMetrics{
		validations: validations,
		redemptions: redemptions,
	}
}

// IncValidation counts a coupon validation attempt.
func (m *PromotionMetrics) IncValidation(result string) {
	if m == nil || m.validations == nil {
		return
	}
	m.validations.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncRedemption counts a coupon redemption attempt.
func (m *PromotionMetrics) IncRedemption(result string) {
	if m == nil || m.redemptions == nil {
		return
	}
	m.redemptions.WithLabelValues(normalizeLabel(result)).Inc()
}
