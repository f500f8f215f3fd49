package inventory

import (
	"github.com/google/uuid"

	"github.com/packwise/packwise-backend/pkg/enums"
)

// MovementContext carries the optional audit trail for a stock movement.
type MovementContext struct {
	Channel       *enums.ChannelType
	ReferenceID   *string
	ReferenceType *string
	Notes         *string
	ActorID       *uuid.UUID
}

// AdjustInput is a manual counter correction. Set mode replaces a counter
// outright, change mode applies a signed delta. At least one counter field
// must be present.
type AdjustInput struct {
	Mode      enums.AdjustMode     `json:"mode" validate:"required"`
	OnHand    *int                 `json:"on_hand"`
	Allocated *int                 `json:"allocated"`
	Reason    enums.MovementReason `json:"reason" validate:"required"`
	Notes     *string              `json:"notes"`
	ActorID   *uuid.UUID           `json:"actor_id"`
}

// Status is the counter snapshot returned by every mutation.
type Status struct {
	VariantID         uuid.UUID                 `json:"variant_id"`
	SKU               string                    `json:"sku"`
	OnHand            int                       `json:"on_hand"`
	Allocated         int                       `json:"allocated"`
	Available         int                       `json:"available"`
	SafetyStock       int                       `json:"safety_stock"`
	LowStockThreshold int                       `json:"low_stock_threshold"`
	IsLowStock        bool                      `json:"is_low_stock"`
	ChannelBuffers    map[enums.ChannelType]int `json:"channel_buffers"`
}

// ImportLine is a single line of an external marketplace order.
type ImportLine struct {
	ExternalSKU string `json:"external_sku" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

// ImportOrderInput describes an external order whose lines should be
// allocated against mapped variants.
type ImportOrderInput struct {
	Channel         enums.ChannelType `json:"channel" validate:"required"`
	ExternalOrderID string            `json:"external_order_id" validate:"required"`
	Lines           []ImportLine      `json:"lines" validate:"required,min=1,dive"`
}

// ImportedLine records a successfully allocated import line.
type ImportedLine struct {
	ExternalSKU string    `json:"external_sku"`
	VariantID   uuid.UUID `json:"variant_id"`
	Quantity    int       `json:"quantity"`
}

// ImportLineError records why a single line could not be allocated. Lines
// fail independently; one bad SKU does not sink the order.
type ImportLineError struct {
	ExternalSKU string `json:"external_sku"`
	Message     string `json:"message"`
}

// ImportResult is the partial-success outcome of an external order import.
type ImportResult struct {
	Imported []ImportedLine    `json:"imported"`
	Errors   []ImportLineError `json:"errors"`
}
