package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/packwise/packwise-backend/pkg/enums"
)

// LedgerEntry records an immutable stock movement for a variant. Entries are
// written once per allocation-machine operation and never updated or deleted.
type LedgerEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null;index"`
	SKU       string    `gorm:"column:sku;not null"`

	Reason  enums.MovementReason `gorm:"column:reason;type:movement_reason_enum;not null"`
	Channel *enums.ChannelType   `gorm:"column:channel;type:channel_type_enum"`

	OnHandBefore int `gorm:"column:on_hand_before;not null"`
	OnHandAfter  int `gorm:"column:on_hand_after;not null"`
	OnHandChange int `gorm:"column:on_hand_change;not null"`

	AllocatedBefore int `gorm:"column:allocated_before;not null"`
	AllocatedAfter  int `gorm:"column:allocated_after;not null"`
	AllocatedChange int `gorm:"column:allocated_change;not null"`

	ReferenceID   *string    `gorm:"column:reference_id;index"`
	ReferenceType *string    `gorm:"column:reference_type"`
	Notes         *string    `gorm:"column:notes"`
	CreatedBy     *uuid.UUID `gorm:"column:created_by;type:uuid"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
