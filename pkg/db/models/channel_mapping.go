package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/packwise/packwise-backend/pkg/enums"
)

// ChannelMapping resolves an external marketplace SKU to an internal variant.
// Imports treat a missing or inactive mapping as a per-line recoverable error.
type ChannelMapping struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Channel     enums.ChannelType `gorm:"column:channel;type:channel_type_enum;not null;uniqueIndex:idx_channel_mappings_channel_sku"`
	ExternalSKU string            `gorm:"column:external_sku;not null;uniqueIndex:idx_channel_mappings_channel_sku"`
	VariantID   uuid.UUID         `gorm:"column:variant_id;type:uuid;not null;index"`

	State enums.LifecycleState `gorm:"column:state;type:lifecycle_state_enum;not null;default:active"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
