package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponUsage is an immutable redemption record, one per successful apply.
// UserID is nil for guest checkouts. The (coupon_id, order_id) pair is unique
// so a replayed apply cannot double-record.
type CouponUsage struct {
	ID       uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID uuid.UUID  `gorm:"column:coupon_id;type:uuid;not null;index;uniqueIndex:idx_coupon_usages_coupon_order"`
	UserID   *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	OrderID  uuid.UUID  `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_coupon_usages_coupon_order"`

	DiscountApplied decimal.Decimal `gorm:"column:discount_applied;type:numeric(12,2);not null"`
	OrderTotal      decimal.Decimal `gorm:"column:order_total;type:numeric(12,2);not null"`

	UsedAt time.Time `gorm:"column:used_at;autoCreateTime"`
}
