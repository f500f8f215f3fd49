package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/packwise/packwise-backend/pkg/errors"
	"github.com/packwise/packwise-backend/pkg/validate"
)

const referenceTypeExternalOrder = "external_order"

// ImportExternalOrders allocates stock for an order pulled from an external
// marketplace. Each line resolves its channel mapping and allocates
// independently; failures are collected per line so a single unknown SKU does
// not block the rest of the order.
func (s *service) ImportExternalOrders(ctx context.Context, input ImportOrderInput) (*ImportResult, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid channel %q", input.Channel))
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"channel":           string(input.Channel),
		"external_order_id": input.ExternalOrderID,
	})

	result := &ImportResult{}
	channel := input.Channel
	for _, line := range input.Lines {
		mapping, err := s.mappings.FindActive(ctx, channel, line.ExternalSKU)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Errors = append(result.Errors, ImportLineError{
				ExternalSKU: line.ExternalSKU,
				Message:     "no active channel mapping for sku",
			})
			continue
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving channel mapping")
		}

		_, err = s.Allocate(ctx, mapping.VariantID, line.Quantity, MovementContext{
			Channel:       &channel,
			ReferenceID:   &input.ExternalOrderID,
			ReferenceType: ptr(referenceTypeExternalOrder),
		})
		if err != nil {
			result.Errors = append(result.Errors, ImportLineError{
				ExternalSKU: line.ExternalSKU,
				Message:     lineErrorMessage(err),
			})
			continue
		}

		result.Imported = append(result.Imported, ImportedLine{
			ExternalSKU: line.ExternalSKU,
			VariantID:   mapping.VariantID,
			Quantity:    line.Quantity,
		})
	}

	if len(result.Errors) > 0 {
		s.logg.Warn(logCtx, fmt.Sprintf("external order import completed with %d failed lines", len(result.Errors)))
	} else {
		s.logg.Info(logCtx, "external order import completed")
	}
	return result, nil
}

func lineErrorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}

func ptr[T any](v T) *T {
	return &v
}
