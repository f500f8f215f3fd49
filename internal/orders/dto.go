package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
)

// QuoteLine is a cart line to be priced or allocated.
type QuoteLine struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

// QuotedLine is a priced cart line.
type QuotedLine struct {
	VariantID uuid.UUID       `json:"variant_id"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Quote prices a cart without touching stock.
type Quote struct {
	Lines    []QuotedLine    `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CreateOrderInput drives the order placement orchestration.
type CreateOrderInput struct {
	Lines      []QuoteLine        `json:"lines"`
	CouponCode *string            `json:"coupon_code"`
	UserID     *uuid.UUID         `json:"user_id"`
	Channel    *enums.ChannelType `json:"channel"`
}

// OrderSummary reports the outcome of a placed order: priced lines, applied
// discount, and the gift tiers the discounted total qualifies for.
type OrderSummary struct {
	OrderID  uuid.UUID       `json:"order_id"`
	Lines    []QuotedLine    `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`

	CouponCode *string           `json:"coupon_code"`
	GiftTiers  []models.GiftTier `json:"gift_tiers"`
}
