package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/internal/ledger"
	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
	pkgerrors "github.com/packwise/packwise-backend/pkg/errors"
	"github.com/packwise/packwise-backend/pkg/logger"
	"github.com/packwise/packwise-backend/pkg/metrics"
	"github.com/packwise/packwise-backend/pkg/validate"
)

// Service mutates variant stock counters. Every successful mutation writes
// exactly one ledger entry inside the same transaction as the counter update.
type Service interface {
	Allocate(ctx context.Context, variantID uuid.UUID, qty int, mv MovementContext) (*Status, error)
	Deallocate(ctx context.Context, variantID uuid.UUID, qty int, mv MovementContext) (*Status, error)
	Fulfill(ctx context.Context, variantID uuid.UUID, qty int, mv MovementContext) (*Status, error)
	Adjust(ctx context.Context, variantID uuid.UUID, input AdjustInput) (*Status, error)
	GetStatus(ctx context.Context, variantID uuid.UUID) (*Status, error)
	ImportExternalOrders(ctx context.Context, input ImportOrderInput) (*ImportResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type mappingFinder interface {
	FindActive(ctx context.Context, channel enums.ChannelType, externalSKU string) (*models.ChannelMapping, error)
}

type service struct {
	repo     *Repository
	ledger   ledger.Service
	mappings mappingFinder
	dbClient txRunner
	logg     *logger.Logger
	metrics  *metrics.InventoryMetrics
}

// NewService wires the allocation machine. Metrics may be nil.
func NewService(
	repo *Repository,
	ledgerSvc ledger.Service,
	mappings mappingFinder,
	dbClient txRunner,
	logg *logger.Logger,
	invMetrics *metrics.InventoryMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if mappings == nil {
		return nil, fmt.Errorf("channel mapping repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		ledger:   ledgerSvc,
		mappings: mappings,
		dbClient: dbClient,
		logg:     logg,
		metrics:  invMetrics,
	}, nil
}

func (s *service) Allocate(ctx context.Context, variantID uuid.UUID, qty int, mv MovementContext) (*Status, error) {
	defer s.timeOperation("allocate")()

	if err := validateMovement(variantID, qty, mv); err != nil {
		return nil, err
	}

	var status *Status
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// existence check first, so a missing variant reads as NotFound
		// rather than a zero-row guarded update
		if _, err := s.loadVariant(ctx, repo, variantID); err != nil {
			return err
		}

		bufferQty := 0
		if mv.Channel != nil {
			buffer, err := repo.ChannelBufferQty(ctx, variantID, *mv.Channel)
			if err != nil {
				return err
			}
			bufferQty = buffer
		}

		ok, err := repo.AllocateConditional(ctx, variantID, qty, bufferQty)
		if err != nil {
			return err
		}
		if !ok {
			fresh, err := repo.FindVariant(ctx, variantID)
			if err != nil {
				return err
			}
			available := fresh.Available() - bufferQty
			if available < 0 {
				available = 0
			}
			s.metrics.IncInsufficient(channelLabel(mv.Channel))
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock to allocate").
				WithDetails(map[string]any{
					"sku":       fresh.SKU,
					"requested": qty,
					"available": available,
				})
		}

		// The conditional update holds the row lock, so this re-read is the
		// committed-after state and before values follow arithmetically.
		after, err := repo.FindVariant(ctx, variantID)
		if err != nil {
			return err
		}

		_, err = s.ledger.WithTx(tx).Append(ctx, ledger.EntryDraft{
			VariantID:       variantID,
			SKU:             after.SKU,
			Reason:          enums.MovementReasonOrderCreated,
			Channel:         mv.Channel,
			OnHandBefore:    after.OnHand,
			OnHandAfter:     after.OnHand,
			AllocatedBefore: after.Allocated - qty,
			AllocatedAfter:  after.Allocated,
			ReferenceID:     mv.ReferenceID,
			ReferenceType:   mv.ReferenceType,
			Notes:           mv.Notes,
			CreatedBy:       mv.ActorID,
		})
		if err != nil {
			return err
		}

		status, err = s.statusFor(ctx, repo, after)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordMovement(enums.MovementReasonOrderCreated, status)
	return status, nil
}

func (s *service) Deallocate(ctx context.Context, variantID uuid.UUID, qty int, mv MovementContext) (*Status, error) {
	defer s.timeOperation("deallocate")()
	return s.release(ctx, variantID, qty, mv, enums.MovementReasonOrderCanceled, false)
}

func (s *service) Fulfill(ctx context.Context, variantID uuid.UUID, qty int, mv MovementContext) (*Status, error) {
	defer s.timeOperation("fulfill")()
	return s.release(ctx, variantID, qty, mv, enums.MovementReasonOrderFulfilled, true)
}

// release handles the two allocation-reducing movements. Fulfillment also
// draws down on-hand. Counters clamp at zero rather than erroring so the
// ledger keeps recording even when a cancellation replays.
func (s *service) release(
	ctx context.Context,
	variantID uuid.UUID,
	qty int,
	mv MovementContext,
	reason enums.MovementReason,
	drawDownOnHand bool,
) (*Status, error) {
	if err := validateMovement(variantID, qty, mv); err != nil {
		return nil, err
	}

	var status *Status
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		variant, err := s.loadVariantForUpdate(ctx, repo, variantID)
		if err != nil {
			return err
		}

		newAllocated := variant.Allocated - qty
		newOnHand := variant.OnHand
		if drawDownOnHand {
			newOnHand = variant.OnHand - qty
		}

		clamped := false
		if newAllocated < 0 {
			newAllocated = 0
			clamped = true
		}
		if newOnHand < 0 {
			newOnHand = 0
			clamped = true
		}
		if clamped {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"variant_id": variantID.String(),
				"sku":        variant.SKU,
				"reason":     string(reason),
				"quantity":   qty,
			})
			s.logg.Warn(logCtx, "stock counters clamped at zero")
			s.metrics.IncClamp(string(reason))
		}

		if err := repo.SetCounters(ctx, variantID, newOnHand, newAllocated); err != nil {
			return err
		}

		_, err = s.ledger.WithTx(tx).Append(ctx, ledger.EntryDraft{
			VariantID:       variantID,
			SKU:             variant.SKU,
			Reason:          reason,
			Channel:         mv.Channel,
			OnHandBefore:    variant.OnHand,
			OnHandAfter:     newOnHand,
			AllocatedBefore: variant.Allocated,
			AllocatedAfter:  newAllocated,
			ReferenceID:     mv.ReferenceID,
			ReferenceType:   mv.ReferenceType,
			Notes:           mv.Notes,
			CreatedBy:       mv.ActorID,
		})
		if err != nil {
			return err
		}

		variant.OnHand = newOnHand
		variant.Allocated = newAllocated
		status, err = s.statusFor(ctx, repo, variant)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordMovement(reason, status)
	return status, nil
}

// adjustReasons are the movement reasons a manual correction may carry.
var adjustReasons = map[enums.MovementReason]bool{
	enums.MovementReasonManualAdjustment: true,
	enums.MovementReasonRecount:          true,
	enums.MovementReasonDamage:           true,
	enums.MovementReasonReceived:         true,
	enums.MovementReasonReturned:         true,
}

func (s *service) Adjust(ctx context.Context, variantID uuid.UUID, input AdjustInput) (*Status, error) {
	defer s.timeOperation("adjust")()

	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid adjust mode %q", input.Mode))
	}
	if !adjustReasons[input.Reason] {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("reason %q is not valid for a manual adjustment", input.Reason))
	}
	if input.OnHand == nil && input.Allocated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one of on_hand or allocated is required")
	}
	if input.Mode == enums.AdjustModeSet {
		if input.OnHand != nil && *input.OnHand < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "on_hand cannot be set below zero")
		}
		if input.Allocated != nil && *input.Allocated < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "allocated cannot be set below zero")
		}
	}

	var status *Status
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		variant, err := s.loadVariantForUpdate(ctx, repo, variantID)
		if err != nil {
			return err
		}

		newOnHand := applyAdjust(variant.OnHand, input.OnHand, input.Mode)
		newAllocated := applyAdjust(variant.Allocated, input.Allocated, input.Mode)

		clamped := false
		if newOnHand < 0 {
			newOnHand = 0
			clamped = true
		}
		if newAllocated < 0 {
			newAllocated = 0
			clamped = true
		}
		if clamped {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"variant_id": variantID.String(),
				"sku":        variant.SKU,
				"reason":     string(input.Reason),
			})
			s.logg.Warn(logCtx, "adjustment clamped at zero")
			s.metrics.IncClamp(string(input.Reason))
		}

		if err := repo.SetCounters(ctx, variantID, newOnHand, newAllocated); err != nil {
			return err
		}

		_, err = s.ledger.WithTx(tx).Append(ctx, ledger.EntryDraft{
			VariantID:       variantID,
			SKU:             variant.SKU,
			Reason:          input.Reason,
			OnHandBefore:    variant.OnHand,
			OnHandAfter:     newOnHand,
			AllocatedBefore: variant.Allocated,
			AllocatedAfter:  newAllocated,
			Notes:           input.Notes,
			CreatedBy:       input.ActorID,
		})
		if err != nil {
			return err
		}

		variant.OnHand = newOnHand
		variant.Allocated = newAllocated
		status, err = s.statusFor(ctx, repo, variant)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordMovement(input.Reason, status)
	return status, nil
}

func (s *service) GetStatus(ctx context.Context, variantID uuid.UUID) (*Status, error) {
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	variant, err := s.loadVariant(ctx, s.repo, variantID)
	if err != nil {
		return nil, err
	}
	return s.statusFor(ctx, s.repo, variant)
}

func (s *service) loadVariant(ctx context.Context, repo *Repository, variantID uuid.UUID) (*models.Variant, error) {
	variant, err := repo.FindVariant(ctx, variantID)
	return mapVariantLookup(variant, err)
}

// loadVariantForUpdate locks the variant row until the surrounding
// transaction commits. Used by the read-then-write mutation paths.
func (s *service) loadVariantForUpdate(ctx context.Context, repo *Repository, variantID uuid.UUID) (*models.Variant, error) {
	variant, err := repo.FindVariantForUpdate(ctx, variantID)
	return mapVariantLookup(variant, err)
}

func mapVariantLookup(variant *models.Variant, err error) (*models.Variant, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant")
	}
	return variant, nil
}

func (s *service) statusFor(ctx context.Context, repo *Repository, variant *models.Variant) (*Status, error) {
	buffers, err := repo.ChannelBuffers(ctx, variant.ID)
	if err != nil {
		return nil, err
	}
	bufferMap := make(map[enums.ChannelType]int, len(buffers))
	for _, b := range buffers {
		bufferMap[b.Channel] = b.BufferQty
	}
	return &Status{
		VariantID:         variant.ID,
		SKU:               variant.SKU,
		OnHand:            variant.OnHand,
		Allocated:         variant.Allocated,
		Available:         variant.Available(),
		SafetyStock:       variant.SafetyStock,
		LowStockThreshold: variant.LowStockThreshold,
		IsLowStock:        variant.Available() < variant.LowStockThreshold,
		ChannelBuffers:    bufferMap,
	}, nil
}

func (s *service) timeOperation(operation string) func() {
	start := time.Now()
	return func() {
		s.metrics.ObserveDuration(operation, time.Since(start))
	}
}

func (s *service) recordMovement(reason enums.MovementReason, status *Status) {
	if status == nil {
		return
	}
	s.metrics.IncMovement(string(reason))
	s.metrics.SetLowStock(status.SKU, status.IsLowStock)
}

func applyAdjust(current int, value *int, mode enums.AdjustMode) int {
	if value == nil {
		return current
	}
	if mode == enums.AdjustModeSet {
		return *value
	}
	return current + *value
}

func validateMovement(variantID uuid.UUID, qty int, mv MovementContext) error {
	if variantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if mv.Channel != nil && !mv.Channel.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid channel %q", *mv.Channel))
	}
	return nil
}

func channelLabel(channel *enums.ChannelType) string {
	if channel == nil {
		return ""
	}
	return string(*channel)
}
