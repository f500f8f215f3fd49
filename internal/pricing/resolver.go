package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/packwise/packwise-backend/pkg/db/models"
)

// ResolveUnitPrice returns the unit price for the requested quantity: the
// tier with the highest min_qty not exceeding qty wins. When the quantity is
// below every tier's minimum, the lowest tier is used as a fallback so a
// malformed tier set (no min_qty=1 entry) still prices instead of failing.
// An empty tier set resolves to zero.
func ResolveUnitPrice(tiers []models.PriceTier, qty int) decimal.Decimal {
	if tier := SelectTier(tiers, qty); tier != nil {
		return tier.UnitPrice
	}
	return decimal.Zero
}

// SelectTier picks the applicable tier for qty, or the lowest-min_qty tier as
// a fallback. Returns nil only for an empty tier set.
func SelectTier(tiers []models.PriceTier, qty int) *models.PriceTier {
	var selected *models.PriceTier
	var lowest *models.PriceTier
	for i := range tiers {
		tier := &tiers[i]
		if lowest == nil || tier.MinQty < lowest.MinQty {
			lowest = tier
		}
		if tier.MinQty <= qty {
			if selected == nil || tier.MinQty > selected.MinQty {
				selected = tier
			}
		}
	}
	if selected == nil {
		return lowest
	}
	return selected
}

// LineTotal prices a line at the resolved tier, rounded to cents.
func LineTotal(tiers []models.PriceTier, qty int) decimal.Decimal {
	if qty <= 0 {
		return decimal.Zero
	}
	unit := ResolveUnitPrice(tiers, qty)
	return unit.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}
