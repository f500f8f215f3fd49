package inventory

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/internal/catalog"
	"github.com/packwise/packwise-backend/internal/ledger"
	"github.com/packwise/packwise-backend/pkg/db/dbtest"
	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
	pkgerrors "github.com/packwise/packwise-backend/pkg/errors"
	"github.com/packwise/packwise-backend/pkg/logger"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db := dbtest.Open(t)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(db))
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "inventory-test", Output: io.Discard})
	svc, err := NewService(
		NewRepository(db),
		ledgerSvc,
		catalog.NewChannelMappingRepository(db),
		dbtest.TxRunner{DB: db},
		logg,
		nil,
	)
	require.NoError(t, err)
	return svc, db
}

func seedVariant(t *testing.T, db *gorm.DB, sku string, onHand, allocated, safety int) models.Variant {
	t.Helper()
	variant := models.Variant{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        "Kraft Box " + sku,
		OnHand:      onHand,
		Allocated:   allocated,
		SafetyStock: safety,
		State:       enums.LifecycleStateActive,
	}
	require.NoError(t, db.Create(&variant).Error)
	return variant
}

func seedBuffer(t *testing.T, db *gorm.DB, variantID uuid.UUID, channel enums.ChannelType, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&models.ChannelBuffer{
		VariantID: variantID,
		Channel:   channel,
		BufferQty: qty,
	}).Error)
}

func ledgerEntries(t *testing.T, db *gorm.DB, variantID uuid.UUID) []models.LedgerEntry {
	t.Helper()
	var entries []models.LedgerEntry
	require.NoError(t, db.Where("variant_id = ?", variantID).Order("created_at ASC").Find(&entries).Error)
	return entries
}

func TestService_AllocateDrainsAvailabilityExactly(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "BOX-S-100", 100, 20, 10)

	status, err := svc.Allocate(ctx, variant.ID, 70, MovementContext{})
	require.NoError(t, err)
	require.Equal(t, 100, status.OnHand)
	require.Equal(t, 90, status.Allocated)
	require.Equal(t, 0, status.Available)

	_, err = svc.Allocate(ctx, variant.ID, 1, MovementContext{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	require.Equal(t, 0, details["available"])
	require.Equal(t, 1, details["requested"])

	// The failed allocation must leave no trace in counters or the ledger.
	entries := ledgerEntries(t, db, variant.ID)
	require.Len(t, entries, 1)
	require.Equal(t, enums.MovementReasonOrderCreated, entries[0].Reason)
	require.Equal(t, 20, entries[0].AllocatedBefore)
	require.Equal(t, 90, entries[0].AllocatedAfter)
	require.Equal(t, 70, entries[0].AllocatedChange)
	require.Equal(t, 0, entries[0].OnHandChange)

	after, err := svc.GetStatus(ctx, variant.ID)
	require.NoError(t, err)
	require.Equal(t, 90, after.Allocated)
}

func TestService_AllocateRespectsChannelBuffer(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "BOX-M-050", 20, 0, 0)
	seedBuffer(t, db, variant.ID, enums.ChannelTypeWeb, 5)

	web := enums.ChannelTypeWeb
	_, err := svc.Allocate(ctx, variant.ID, 16, MovementContext{Channel: &web})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	status, err := svc.Allocate(ctx, variant.ID, 15, MovementContext{Channel: &web})
	require.NoError(t, err)
	require.Equal(t, 15, status.Allocated)
	require.Equal(t, map[enums.ChannelType]int{enums.ChannelTypeWeb: 5}, status.ChannelBuffers)

	// A channel without a buffer can still take the remainder.
	pos := enums.ChannelTypePOS
	status, err = svc.Allocate(ctx, variant.ID, 5, MovementContext{Channel: &pos})
	require.NoError(t, err)
	require.Equal(t, 20, status.Allocated)
}

func TestService_AllocateValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "BOX-L-025", 10, 0, 0)

	_, err := svc.Allocate(ctx, uuid.Nil, 1, MovementContext{})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Allocate(ctx, variant.ID, 0, MovementContext{})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	bogus := enums.ChannelType("carrier-pigeon")
	_, err = svc.Allocate(ctx, variant.ID, 1, MovementContext{Channel: &bogus})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Allocate(ctx, uuid.New(), 1, MovementContext{})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestService_DeallocateClampsAtZero(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "TAPE-48", 50, 5, 0)

	status, err := svc.Deallocate(ctx, variant.ID, 8, MovementContext{})
	require.NoError(t, err)
	require.Equal(t, 0, status.Allocated)
	require.Equal(t, 50, status.OnHand)

	entries := ledgerEntries(t, db, variant.ID)
	require.Len(t, entries, 1)
	require.Equal(t, enums.MovementReasonOrderCanceled, entries[0].Reason)
	require.Equal(t, 5, entries[0].AllocatedBefore)
	require.Equal(t, 0, entries[0].AllocatedAfter)
	require.Equal(t, -5, entries[0].AllocatedChange)
}

func TestService_FulfillDrawsDownBothCounters(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "TAPE-72", 50, 30, 0)

	ref := "ord-1001"
	status, err := svc.Fulfill(ctx, variant.ID, 30, MovementContext{ReferenceID: &ref})
	require.NoError(t, err)
	require.Equal(t, 20, status.OnHand)
	require.Equal(t, 0, status.Allocated)
	require.Equal(t, 20, status.Available)

	entries := ledgerEntries(t, db, variant.ID)
	require.Len(t, entries, 1)
	require.Equal(t, enums.MovementReasonOrderFulfilled, entries[0].Reason)
	require.Equal(t, -30, entries[0].OnHandChange)
	require.Equal(t, -30, entries[0].AllocatedChange)
	require.Equal(t, "ord-1001", *entries[0].ReferenceID)
}

func TestService_AdjustValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "WRAP-10", 10, 0, 0)

	ten := 10
	negative := -1
	tests := []struct {
		name  string
		input AdjustInput
	}{
		{
			name:  "missing both counters",
			input: AdjustInput{Mode: enums.AdjustModeSet, Reason: enums.MovementReasonRecount},
		},
		{
			name:  "invalid mode",
			input: AdjustInput{Mode: enums.AdjustMode("replace"), OnHand: &ten, Reason: enums.MovementReasonRecount},
		},
		{
			name:  "order reason not allowed",
			input: AdjustInput{Mode: enums.AdjustModeSet, OnHand: &ten, Reason: enums.MovementReasonOrderCreated},
		},
		{
			name:  "set below zero",
			input: AdjustInput{Mode: enums.AdjustModeSet, OnHand: &negative, Reason: enums.MovementReasonRecount},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Adjust(ctx, variant.ID, tc.input)
			require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	require.Empty(t, ledgerEntries(t, db, variant.ID))
}

func TestService_AdjustSetMode(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "WRAP-20", 80, 12, 0)

	target := 120
	status, err := svc.Adjust(ctx, variant.ID, AdjustInput{
		Mode:   enums.AdjustModeSet,
		OnHand: &target,
		Reason: enums.MovementReasonRecount,
	})
	require.NoError(t, err)
	require.Equal(t, 120, status.OnHand)
	require.Equal(t, 12, status.Allocated)

	entries := ledgerEntries(t, db, variant.ID)
	require.Len(t, entries, 1)
	require.Equal(t, 80, entries[0].OnHandBefore)
	require.Equal(t, 120, entries[0].OnHandAfter)
	require.Equal(t, 40, entries[0].OnHandChange)
	require.Equal(t, 0, entries[0].AllocatedChange)
}

func TestService_AdjustChangeModeClamps(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "WRAP-30", 10, 0, 0)

	delta := -25
	status, err := svc.Adjust(ctx, variant.ID, AdjustInput{
		Mode:   enums.AdjustModeChange,
		OnHand: &delta,
		Reason: enums.MovementReasonDamage,
	})
	require.NoError(t, err)
	require.Equal(t, 0, status.OnHand)

	entries := ledgerEntries(t, db, variant.ID)
	require.Len(t, entries, 1)
	require.Equal(t, 10, entries[0].OnHandBefore)
	require.Equal(t, 0, entries[0].OnHandAfter)
	require.Equal(t, -10, entries[0].OnHandChange)
}

func TestService_LowStockFlag(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "LABEL-01", 30, 0, 0)
	require.NoError(t, db.Model(&models.Variant{}).Where("id = ?", variant.ID).Update("low_stock_threshold", 5).Error)

	status, err := svc.Allocate(ctx, variant.ID, 26, MovementContext{})
	require.NoError(t, err)
	require.Equal(t, 4, status.Available)
	require.True(t, status.IsLowStock)
}

// The flag trips strictly below the threshold. A variant sitting exactly at
// its threshold is not low stock.
func TestService_LowStockThresholdBoundary(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "LABEL-02", 5, 0, 0)
	require.NoError(t, db.Model(&models.Variant{}).Where("id = ?", variant.ID).Update("low_stock_threshold", 5).Error)

	status, err := svc.GetStatus(ctx, variant.ID)
	require.NoError(t, err)
	require.Equal(t, 5, status.Available)
	require.False(t, status.IsLowStock)

	status, err = svc.Allocate(ctx, variant.ID, 1, MovementContext{})
	require.NoError(t, err)
	require.Equal(t, 4, status.Available)
	require.True(t, status.IsLowStock)
}

// Every mutation writes exactly one ledger entry, and replaying the entries
// reconstructs the final counters.
func TestService_LedgerReconstructsCounters(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "BOX-XL-010", 200, 0, 10)

	_, err := svc.Allocate(ctx, variant.ID, 40, MovementContext{})
	require.NoError(t, err)
	_, err = svc.Deallocate(ctx, variant.ID, 10, MovementContext{})
	require.NoError(t, err)
	_, err = svc.Fulfill(ctx, variant.ID, 25, MovementContext{})
	require.NoError(t, err)

	received := 50
	_, err = svc.Adjust(ctx, variant.ID, AdjustInput{
		Mode:   enums.AdjustModeChange,
		OnHand: &received,
		Reason: enums.MovementReasonReceived,
	})
	require.NoError(t, err)

	entries := ledgerEntries(t, db, variant.ID)
	require.Len(t, entries, 4)

	onHand, allocated := variant.OnHand, variant.Allocated
	for _, entry := range entries {
		require.Equal(t, onHand, entry.OnHandBefore)
		require.Equal(t, allocated, entry.AllocatedBefore)
		require.Equal(t, entry.OnHandBefore+entry.OnHandChange, entry.OnHandAfter)
		require.Equal(t, entry.AllocatedBefore+entry.AllocatedChange, entry.AllocatedAfter)
		onHand = entry.OnHandAfter
		allocated = entry.AllocatedAfter
	}

	final, err := svc.GetStatus(ctx, variant.ID)
	require.NoError(t, err)
	require.Equal(t, onHand, final.OnHand)
	require.Equal(t, allocated, final.Allocated)
	require.Equal(t, 225, final.OnHand)
	require.Equal(t, 5, final.Allocated)
}
