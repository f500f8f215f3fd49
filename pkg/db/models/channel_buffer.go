package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/packwise/packwise-backend/pkg/enums"
)

// ChannelBuffer holds back stock from a specific sales channel so one surface
// cannot drain the pool another depends on.
type ChannelBuffer struct {
	VariantID uuid.UUID         `gorm:"column:variant_id;type:uuid;primaryKey"`
	Channel   enums.ChannelType `gorm:"column:channel;type:channel_type_enum;primaryKey"`
	BufferQty int               `gorm:"column:buffer_qty;not null;default:0"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
