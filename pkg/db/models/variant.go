package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/packwise/packwise-backend/pkg/enums"
)

// Variant is a purchasable SKU with its physical attributes, tiered pricing,
// and inventory counters. Counters are mutated only through the stock
// allocation service once the variant is published.
type Variant struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU  string    `gorm:"column:sku;uniqueIndex;not null"`
	Name string    `gorm:"column:name;not null"`

	Size     *string `gorm:"column:size"`
	Color    *string `gorm:"column:color"`
	PackType *string `gorm:"column:pack_type"`

	OnHand            int `gorm:"column:on_hand;not null;default:0"`
	Allocated         int `gorm:"column:allocated;not null;default:0"`
	SafetyStock       int `gorm:"column:safety_stock;not null;default:0"`
	LowStockThreshold int `gorm:"column:low_stock_threshold;not null;default:0"`

	State enums.LifecycleState `gorm:"column:state;type:lifecycle_state_enum;not null;default:active"`

	PriceTiers     []PriceTier     `gorm:"foreignKey:VariantID"`
	ChannelBuffers []ChannelBuffer `gorm:"foreignKey:VariantID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Available is the sellable quantity before channel buffers, floor-clamped for
// display. The raw counters are kept as-is so audit math stays honest.
func (v Variant) Available() int {
	available := v.OnHand - v.Allocated - v.SafetyStock
	if available < 0 {
		return 0
	}
	return available
}
