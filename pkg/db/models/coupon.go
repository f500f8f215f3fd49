package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/packwise/packwise-backend/pkg/enums"
)

// Coupon is an admin-created discount code. UsageCount is incremented
// atomically on each successful redemption and never decremented.
type Coupon struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code string    `gorm:"column:code;uniqueIndex;not null"`

	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:discount_type_enum;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`

	UsageType  enums.CouponUsageType `gorm:"column:usage_type;type:coupon_usage_type_enum;not null"`
	UsageLimit *int                  `gorm:"column:usage_limit"`
	UsageCount int                   `gorm:"column:usage_count;not null;default:0"`

	MinimumOrderAmount    decimal.Decimal  `gorm:"column:minimum_order_amount;type:numeric(12,2);not null;default:0"`
	MaximumDiscountAmount *decimal.Decimal `gorm:"column:maximum_discount_amount;type:numeric(12,2)"`

	ExpiresAt *time.Time           `gorm:"column:expires_at"`
	State     enums.LifecycleState `gorm:"column:state;type:lifecycle_state_enum;not null;default:active"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
