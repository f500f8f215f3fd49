package promotions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/pkg/config"
	"github.com/packwise/packwise-backend/pkg/db"
	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
	pkgerrors "github.com/packwise/packwise-backend/pkg/errors"
	"github.com/packwise/packwise-backend/pkg/idempotency"
	"github.com/packwise/packwise-backend/pkg/logger"
	"github.com/packwise/packwise-backend/pkg/metrics"
)

const redemptionScope = "coupon_redemption"

var percentBase = decimal.NewFromInt(100)

// Service validates and redeems coupons and surfaces gift tier promotions.
type Service interface {
	CreateCoupon(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID *uuid.UUID) (*ValidationResult, error)
	Redeem(ctx context.Context, input RedeemInput) (*RedemptionResult, error)
	AvailableTiersForAmount(ctx context.Context, amount decimal.Decimal) ([]models.GiftTier, error)
	NearbyTiers(ctx context.Context, amount decimal.Decimal) ([]TierHint, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// redemptionGuard is the idempotency surface used to fence duplicate
// redemption calls for the same order.
type redemptionGuard interface {
	CheckAndMarkProcessed(ctx context.Context, scope string, id uuid.UUID) (bool, error)
	Release(ctx context.Context, scope string, id uuid.UUID) error
}

var _ redemptionGuard = (*idempotency.Manager)(nil)

type service struct {
	coupons   *CouponRepository
	giftTiers *GiftTierRepository
	dbClient  txRunner
	guard     redemptionGuard
	logg      *logger.Logger
	metrics   *metrics.PromotionMetrics

	nearbyGap decimal.Decimal
	nearbyMax int
}

// NewService wires the promotions service. Metrics may be nil.
func NewService(
	coupons *CouponRepository,
	giftTiers *GiftTierRepository,
	dbClient txRunner,
	guard redemptionGuard,
	cfg config.PromotionsConfig,
	logg *logger.Logger,
	promoMetrics *metrics.PromotionMetrics,
) (Service, error) {
	if coupons == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if giftTiers == nil {
		return nil, fmt.Errorf("gift tier repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if guard == nil {
		return nil, fmt.Errorf("redemption guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	gap, err := decimal.NewFromString(cfg.NearbyTierGap)
	if err != nil {
		return nil, fmt.Errorf("parsing nearby tier gap: %w", err)
	}
	nearbyMax := cfg.NearbyTierMax
	if nearbyMax <= 0 {
		nearbyMax = 2
	}
	return &service{
		coupons:   coupons,
		giftTiers: giftTiers,
		dbClient:  dbClient,
		guard:     guard,
		logg:      logg,
		metrics:   promoMetrics,
		nearbyGap: gap,
		nearbyMax: nearbyMax,
	}, nil
}

func (s *service) CreateCoupon(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	code := NormalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", input.DiscountType))
	}
	if !input.UsageType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid usage type %q", input.UsageType))
	}
	if input.DiscountValue.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value cannot be negative")
	}
	if input.DiscountType == enums.DiscountTypePercentage && input.DiscountValue.GreaterThan(percentBase) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if input.MinimumOrderAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order amount cannot be negative")
	}
	if input.UsageType == enums.CouponUsageTypeLimitedUse && (input.UsageLimit == nil || *input.UsageLimit < 1) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limited-use coupons require a usage limit of at least 1")
	}

	coupon := &models.Coupon{
		ID:                    uuid.New(),
		Code:                  code,
		DiscountType:          input.DiscountType,
		DiscountValue:         input.DiscountValue,
		UsageType:             input.UsageType,
		UsageLimit:            input.UsageLimit,
		MinimumOrderAmount:    input.MinimumOrderAmount,
		MaximumDiscountAmount: input.MaximumDiscountAmount,
		ExpiresAt:             input.ExpiresAt,
		State:                 enums.LifecycleStateActive,
	}
	if err := s.coupons.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating coupon")
	}
	return coupon, nil
}

// Validate runs the full check sequence and computes the discount. Failed
// validations mutate nothing, so re-validating yields the same outcome.
func (s *service) Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID *uuid.UUID) (*ValidationResult, error) {
	result, err := s.validate(ctx, code, subtotal, userID)
	if err != nil {
		s.metrics.IncValidation("rejected")
		return nil, err
	}
	s.metrics.IncValidation("accepted")
	return result, nil
}

func (s *service) validate(ctx context.Context, code string, subtotal decimal.Decimal, userID *uuid.UUID) (*ValidationResult, error) {
	coupon, err := s.coupons.FindByCode(ctx, NormalizeCode(code))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}

	if !coupon.State.IsActive() {
		return nil, rejected("coupon is not active")
	}
	// Expiry timestamps without a zone are stored and compared as UTC.
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.UTC().Before(time.Now().UTC()) {
		return nil, rejected("coupon has expired")
	}
	if subtotal.LessThan(coupon.MinimumOrderAmount) {
		return nil, rejected(fmt.Sprintf("order subtotal must be at least %s", coupon.MinimumOrderAmount.StringFixed(2)))
	}

	switch coupon.UsageType {
	case enums.CouponUsageTypeSingleUse:
		if userID == nil {
			return nil, rejected("login required to use this coupon")
		}
		used, err := s.coupons.CountUsagesByUser(ctx, coupon.ID, *userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting coupon usages")
		}
		if used > 0 {
			return nil, rejected("coupon has already been used")
		}
	case enums.CouponUsageTypeLimitedUse:
		if coupon.UsageLimit == nil {
			return nil, rejected("coupon usage limit is not configured")
		}
		if coupon.UsageCount >= *coupon.UsageLimit {
			return nil, rejected("coupon usage limit exceeded")
		}
	case enums.CouponUsageTypeUnlimited:
		// no additional gating
	}

	return &ValidationResult{
		Valid:          true,
		Coupon:         coupon,
		DiscountAmount: computeDiscount(coupon, subtotal),
	}, nil
}

// computeDiscount is bounded to [0, subtotal], and additionally to the
// coupon's cap for percentage discounts.
func computeDiscount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.DiscountTypeFixed:
		discount = decimal.Min(coupon.DiscountValue, subtotal)
	case enums.DiscountTypePercentage:
		discount = subtotal.Mul(coupon.DiscountValue).Div(percentBase)
		if coupon.MaximumDiscountAmount != nil {
			discount = decimal.Min(discount, *coupon.MaximumDiscountAmount)
		}
		discount = decimal.Min(discount, subtotal)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount.Round(2)
}

func (s *service) Redeem(ctx context.Context, input RedeemInput) (*RedemptionResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	already, err := s.guard.CheckAndMarkProcessed(ctx, redemptionScope, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking redemption idempotency")
	}
	if already {
		s.metrics.IncRedemption("duplicate")
		return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "coupon already redeemed for this order")
	}

	result, err := s.redeem(ctx, input)
	if err != nil {
		// Drop the marker so the order can retry once the cause is fixed.
		if releaseErr := s.guard.Release(ctx, redemptionScope, input.OrderID); releaseErr != nil {
			logCtx := s.logg.WithField(ctx, "order_id", input.OrderID.String())
			s.logg.Error(logCtx, "releasing redemption idempotency key", releaseErr)
		}
		s.metrics.IncRedemption("rejected")
		return nil, err
	}
	s.metrics.IncRedemption("accepted")
	return result, nil
}

func (s *service) redeem(ctx context.Context, input RedeemInput) (*RedemptionResult, error) {
	// Re-validate inside the redemption path to close the gap between an
	// earlier Validate call and this commit.
	validation, err := s.validate(ctx, input.Code, input.Subtotal, input.UserID)
	if err != nil {
		return nil, err
	}
	coupon := validation.Coupon

	usage := &models.CouponUsage{
		ID:              uuid.New(),
		CouponID:        coupon.ID,
		UserID:          input.UserID,
		OrderID:         input.OrderID,
		DiscountApplied: validation.DiscountAmount,
		OrderTotal:      input.Subtotal,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.coupons.WithTx(tx)
		if err := repo.CreateUsage(ctx, usage); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeIdempotency, "coupon already redeemed for this order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording coupon usage")
		}
		ok, err := repo.IncrementUsage(ctx, coupon.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing coupon usage count")
		}
		if !ok {
			return rejected("coupon usage limit exceeded")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"coupon_code": coupon.Code,
		"order_id":    input.OrderID.String(),
	})
	s.logg.Info(logCtx, "coupon redeemed")

	return &RedemptionResult{
		CouponID:       coupon.ID,
		Code:           coupon.Code,
		DiscountAmount: validation.DiscountAmount,
	}, nil
}

// NormalizeCode canonicalizes user-entered coupon codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func rejected(reason string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodePromotionRejected, reason)
}
