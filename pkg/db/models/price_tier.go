package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceTier captures tiered unit pricing per variant: the unit price applies
// to any order line whose quantity reaches MinQty.
type PriceTier struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VariantID uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;index"`
	MinQty    int             `gorm:"column:min_qty;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
