package promotions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
)

// CreateCouponInput holds the admin payload to create a coupon.
type CreateCouponInput struct {
	Code          string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal

	UsageType  enums.CouponUsageType
	UsageLimit *int

	MinimumOrderAmount    decimal.Decimal
	MaximumDiscountAmount *decimal.Decimal
	ExpiresAt             *time.Time
}

// ValidationResult is the successful outcome of a coupon validation.
type ValidationResult struct {
	Valid          bool
	Coupon         *models.Coupon
	DiscountAmount decimal.Decimal
}

// RedeemInput ties a validated coupon to an order commit. OrderID doubles as
// the idempotency key for the redemption.
type RedeemInput struct {
	Code     string
	OrderID  uuid.UUID
	Subtotal decimal.Decimal
	UserID   *uuid.UUID
}

// RedemptionResult reports a recorded redemption.
type RedemptionResult struct {
	CouponID       uuid.UUID
	Code           string
	DiscountAmount decimal.Decimal
}

// TierHint is a "spend more to unlock" prompt for a gift tier just above the
// current cart total.
type TierHint struct {
	Tier      models.GiftTier
	AmountGap decimal.Decimal
}
