package promotions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
)

// CouponRepository manages coupons and their redemption records.
type CouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository returns a coupon repository bound to the provided database.
func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *CouponRepository) WithTx(tx *gorm.DB) *CouponRepository {
	if tx == nil {
		return r
	}
	return &CouponRepository{db: tx}
}

// FindByCode loads a coupon by its normalized code.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Create persists a new coupon.
func (r *CouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

// CountUsagesByUser returns how many times the user has redeemed the coupon.
func (r *CouponRepository) CountUsagesByUser(ctx context.Context, couponID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).
		Error
	return count, err
}

// CreateUsage records a redemption. The unique (coupon_id, order_id) index
// rejects a replayed write at the storage layer.
func (r *CouponRepository) CreateUsage(ctx context.Context, usage *models.CouponUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

// IncrementUsage bumps usage_count atomically. For limited-use coupons the
// guard lives in the WHERE clause so a concurrent redemption cannot push the
// count past the limit. Returns false when the guard rejected the increment.
func (r *CouponRepository) IncrementUsage(ctx context.Context, couponID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE coupons
		 SET usage_count = usage_count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		   AND (usage_type != ? OR usage_limit IS NULL OR usage_count < usage_limit)`,
		couponID, enums.CouponUsageTypeLimitedUse,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GiftTierRepository reads gift tier promotions.
type GiftTierRepository struct {
	db *gorm.DB
}

// NewGiftTierRepository returns a gift tier repository bound to the provided database.
func NewGiftTierRepository(db *gorm.DB) *GiftTierRepository {
	return &GiftTierRepository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *GiftTierRepository) WithTx(tx *gorm.DB) *GiftTierRepository {
	if tx == nil {
		return r
	}
	return &GiftTierRepository{db: tx}
}

// ListActive returns active tiers with their gift items, deepest threshold
// first. Item-level state filtering happens in the service.
func (r *GiftTierRepository) ListActive(ctx context.Context) ([]models.GiftTier, error) {
	var tiers []models.GiftTier
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("state = ?", enums.LifecycleStateActive).
		Order("spending_threshold DESC").
		Find(&tiers).
		Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
