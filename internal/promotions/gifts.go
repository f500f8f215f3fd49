package promotions

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/packwise/packwise-backend/pkg/db/models"
	pkgerrors "github.com/packwise/packwise-backend/pkg/errors"
)

// AvailableTiersForAmount returns the active tiers the amount qualifies for,
// best tier first, with only active gift items attached. Tiers whose items
// are all retired are dropped: a tier with nothing to redeem is not available.
func (s *service) AvailableTiersForAmount(ctx context.Context, amount decimal.Decimal) ([]models.GiftTier, error) {
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}

	tiers, err := s.giftTiers.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing gift tiers")
	}

	qualified := make([]models.GiftTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.SpendingThreshold.GreaterThan(amount) {
			continue
		}
		items := tier.ActiveItems()
		if len(items) == 0 {
			continue
		}
		tier.Items = items
		qualified = append(qualified, tier)
	}
	return qualified, nil
}

// NearbyTiers returns up to the configured number of just-out-of-reach tiers
// within the configured spend gap, closest first.
func (s *service) NearbyTiers(ctx context.Context, amount decimal.Decimal) ([]TierHint, error) {
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}

	tiers, err := s.giftTiers.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing gift tiers")
	}

	hints := make([]TierHint, 0, s.nearbyMax)
	for _, tier := range tiers {
		if !tier.SpendingThreshold.GreaterThan(amount) {
			continue
		}
		gap := tier.SpendingThreshold.Sub(amount)
		if gap.GreaterThan(s.nearbyGap) {
			continue
		}
		items := tier.ActiveItems()
		if len(items) == 0 {
			continue
		}
		tier.Items = items
		hints = append(hints, TierHint{Tier: tier, AmountGap: gap})
	}

	sort.Slice(hints, func(i, j int) bool {
		return hints[i].AmountGap.LessThan(hints[j].AmountGap)
	})
	if len(hints) > s.nearbyMax {
		hints = hints[:s.nearbyMax]
	}
	return hints, nil
}
