package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/packwise/packwise-backend/pkg/enums"
)

// GiftTier is a spending-threshold promotion: carts whose total reaches
// SpendingThreshold may pick up to GiftLimit of the tier's active gift items.
type GiftTier struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"column:name;not null"`

	SpendingThreshold decimal.Decimal `gorm:"column:spending_threshold;type:numeric(12,2);not null"`
	GiftLimit         int             `gorm:"column:gift_limit;not null;default:1"`

	State enums.LifecycleState `gorm:"column:state;type:lifecycle_state_enum;not null;default:active"`

	// Items carries every referenced gift item; read paths filter to active
	// ones so orphaned or retired references drop out without cascades.
	Items []GiftItem `gorm:"many2many:gift_tier_items"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ActiveItems returns the subset of gift items visible to customers.
func (t GiftTier) ActiveItems() []GiftItem {
	items := make([]GiftItem, 0, len(t.Items))
	for _, item := range t.Items {
		if item.State.IsActive() {
			items = append(items, item)
		}
	}
	return items
}
