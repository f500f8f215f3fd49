package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/packwise/packwise-backend/pkg/enums"
)

// GiftItem is a giveaway product referenced by gift tiers.
type GiftItem struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"column:name;not null"`

	StockQuantity int                  `gorm:"column:stock_quantity;not null;default:0"`
	State         enums.LifecycleState `gorm:"column:state;type:lifecycle_state_enum;not null;default:active"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
