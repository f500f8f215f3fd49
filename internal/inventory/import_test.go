package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
	pkgerrors "github.com/packwise/packwise-backend/pkg/errors"
)

func seedMapping(t *testing.T, db *gorm.DB, channel enums.ChannelType, externalSKU string, variantID uuid.UUID, state enums.LifecycleState) {
	t.Helper()
	require.NoError(t, db.Create(&models.ChannelMapping{
		ID:          uuid.New(),
		Channel:     channel,
		ExternalSKU: externalSKU,
		VariantID:   variantID,
		State:       state,
	}).Error)
}

func TestService_ImportExternalOrdersPartialSuccess(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	boxes := seedVariant(t, db, "BOX-S-100", 100, 0, 0)
	tape := seedVariant(t, db, "TAPE-48", 3, 0, 0)
	seedMapping(t, db, enums.ChannelTypeAmazon, "AMZ-BOX-S", boxes.ID, enums.LifecycleStateActive)
	seedMapping(t, db, enums.ChannelTypeAmazon, "AMZ-TAPE", tape.ID, enums.LifecycleStateActive)
	seedMapping(t, db, enums.ChannelTypeAmazon, "AMZ-RETIRED", boxes.ID, enums.LifecycleStateInactive)

	result, err := svc.ImportExternalOrders(ctx, ImportOrderInput{
		Channel:         enums.ChannelTypeAmazon,
		ExternalOrderID: "113-2024-7711",
		Lines: []ImportLine{
			{ExternalSKU: "AMZ-BOX-S", Quantity: 10},
			{ExternalSKU: "AMZ-TAPE", Quantity: 5},   // only 3 available
			{ExternalSKU: "AMZ-RETIRED", Quantity: 1}, // mapping inactive
			{ExternalSKU: "AMZ-UNKNOWN", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)
	require.Equal(t, boxes.ID, result.Imported[0].VariantID)
	require.Equal(t, 10, result.Imported[0].Quantity)

	require.Len(t, result.Errors, 3)
	bySKU := map[string]string{}
	for _, lineErr := range result.Errors {
		bySKU[lineErr.ExternalSKU] = lineErr.Message
	}
	require.Contains(t, bySKU["AMZ-TAPE"], "insufficient stock")
	require.Contains(t, bySKU["AMZ-RETIRED"], "no active channel mapping")
	require.Contains(t, bySKU["AMZ-UNKNOWN"], "no active channel mapping")

	// The good line allocated against the mapped variant with full audit data.
	entries := ledgerEntries(t, db, boxes.ID)
	require.Len(t, entries, 1)
	require.Equal(t, enums.MovementReasonOrderCreated, entries[0].Reason)
	require.Equal(t, enums.ChannelTypeAmazon, *entries[0].Channel)
	require.Equal(t, "113-2024-7711", *entries[0].ReferenceID)
	require.Equal(t, "external_order", *entries[0].ReferenceType)

	// The failed line left the second variant untouched.
	require.Empty(t, ledgerEntries(t, db, tape.ID))
}

func TestService_ImportExternalOrdersValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ImportExternalOrders(ctx, ImportOrderInput{
		Channel:         enums.ChannelTypeAmazon,
		ExternalOrderID: "113-2024-7712",
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.ImportExternalOrders(ctx, ImportOrderInput{
		Channel:         enums.ChannelType("fax"),
		ExternalOrderID: "113-2024-7713",
		Lines:           []ImportLine{{ExternalSKU: "X", Quantity: 1}},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.ImportExternalOrders(ctx, ImportOrderInput{
		Channel:         enums.ChannelTypeAmazon,
		ExternalOrderID: "113-2024-7714",
		Lines:           []ImportLine{{ExternalSKU: "X", Quantity: 0}},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
