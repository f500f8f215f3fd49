package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/internal/inventory"
	"github.com/packwise/packwise-backend/internal/pricing"
	"github.com/packwise/packwise-backend/internal/promotions"
	"github.com/packwise/packwise-backend/pkg/db/models"
	pkgerrors "github.com/packwise/packwise-backend/pkg/errors"
	"github.com/packwise/packwise-backend/pkg/logger"
)

const referenceTypeOrder = "order"

// Service orchestrates order placement across pricing, stock allocation, and
// promotions. It owns no storage of its own; every durable effect lives in
// the collaborating services.
type Service interface {
	Quote(ctx context.Context, lines []QuoteLine) (*Quote, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderSummary, error)
}

type variantLoader interface {
	GetVariantDetail(ctx context.Context, id uuid.UUID) (*models.Variant, error)
}

type service struct {
	variants   variantLoader
	stock      inventory.Service
	promotions promotions.Service
	logg       *logger.Logger
}

// NewService wires the order orchestrator.
func NewService(
	variants variantLoader,
	stock inventory.Service,
	promoSvc promotions.Service,
	logg *logger.Logger,
) (Service, error) {
	if variants == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if promoSvc == nil {
		return nil, fmt.Errorf("promotions service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		variants:   variants,
		stock:      stock,
		promotions: promoSvc,
		logg:       logg,
	}, nil
}

// Quote prices the lines through each variant's tier table without reserving
// anything.
func (s *service) Quote(ctx context.Context, lines []QuoteLine) (*Quote, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}

	quote := &Quote{Subtotal: decimal.Zero}
	for _, line := range lines {
		quoted, err := s.priceLine(ctx, line)
		if err != nil {
			return nil, err
		}
		quote.Lines = append(quote.Lines, *quoted)
		quote.Subtotal = quote.Subtotal.Add(quoted.LineTotal)
	}
	return quote, nil
}

func (s *service) priceLine(ctx context.Context, line QuoteLine) (*QuotedLine, error) {
	if line.VariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if line.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	variant, err := s.variants.GetVariantDetail(ctx, line.VariantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant")
	}
	if !variant.State.IsActive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant %s is not purchasable", variant.SKU))
	}

	unitPrice := pricing.ResolveUnitPrice(variant.PriceTiers, line.Quantity)
	return &QuotedLine{
		VariantID: variant.ID,
		SKU:       variant.SKU,
		Quantity:  line.Quantity,
		UnitPrice: unitPrice,
		LineTotal: pricing.LineTotal(variant.PriceTiers, line.Quantity),
	}, nil
}

// CreateOrder prices the cart, reserves stock per line, applies the optional
// coupon, and reports qualifying gift tiers. A failed line or coupon releases
// every reservation taken for this order before the error surfaces.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderSummary, error) {
	quote, err := s.Quote(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New()
	orderRef := orderID.String()
	refType := referenceTypeOrder
	mv := inventory.MovementContext{
		Channel:       input.Channel,
		ReferenceID:   &orderRef,
		ReferenceType: &refType,
		ActorID:       input.UserID,
	}

	var allocated []QuotedLine
	for _, line := range quote.Lines {
		if _, err := s.stock.Allocate(ctx, line.VariantID, line.Quantity, mv); err != nil {
			s.releaseAllocations(ctx, allocated, mv)
			return nil, err
		}
		allocated = append(allocated, line)
	}

	discount := decimal.Zero
	if input.CouponCode != nil {
		redemption, err := s.promotions.Redeem(ctx, promotions.RedeemInput{
			Code:     *input.CouponCode,
			OrderID:  orderID,
			Subtotal: quote.Subtotal,
			UserID:   input.UserID,
		})
		if err != nil {
			s.releaseAllocations(ctx, allocated, mv)
			return nil, err
		}
		discount = redemption.DiscountAmount
	}

	total := quote.Subtotal.Sub(discount)
	giftTiers, err := s.promotions.AvailableTiersForAmount(ctx, total)
	if err != nil {
		// Gift tiers are a presentation concern; the order itself stands.
		logCtx := s.logg.WithField(ctx, "order_id", orderRef)
		s.logg.Error(logCtx, "resolving gift tiers", err)
		giftTiers = nil
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": orderRef,
		"subtotal": quote.Subtotal.StringFixed(2),
		"total":    total.StringFixed(2),
	})
	s.logg.Info(logCtx, "order placed")

	return &OrderSummary{
		OrderID:    orderID,
		Lines:      quote.Lines,
		Subtotal:   quote.Subtotal,
		Discount:   discount,
		Total:      total,
		CouponCode: input.CouponCode,
		GiftTiers:  giftTiers,
	}, nil
}

// releaseAllocations unwinds reservations for an order that failed partway.
// Release errors are logged, not returned: the caller needs the original
// failure, and the deallocate path clamps safely on replay.
func (s *service) releaseAllocations(ctx context.Context, lines []QuotedLine, mv inventory.MovementContext) {
	for _, line := range lines {
		if _, err := s.stock.Deallocate(ctx, line.VariantID, line.Quantity, mv); err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"variant_id": line.VariantID.String(),
				"quantity":   line.Quantity,
			})
			s.logg.Error(logCtx, "releasing reservation for failed order", err)
		}
	}
}
