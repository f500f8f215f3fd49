package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
	"github.com/packwise/packwise-backend/pkg/pagination"
)

// Service defines operations that record and read stock movements. Business
// invariants (available ≥ 0 and friends) are enforced upstream by the
// allocation machine; the ledger records whatever before/after pairs it is
// handed.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Append(ctx context.Context, draft EntryDraft) (*models.LedgerEntry, error)
	ByVariant(ctx context.Context, variantID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error)
	ByReference(ctx context.Context, referenceID string) ([]models.LedgerEntry, error)
	Recent(ctx context.Context, params pagination.Params) ([]models.LedgerEntry, string, error)
}

// EntryDraft captures the immutable data a ledger entry requires. Change
// columns are derived from the before/after pairs so `after = before + change`
// holds by construction.
type EntryDraft struct {
	VariantID uuid.UUID
	SKU       string

	Reason  enums.MovementReason
	Channel *enums.ChannelType

	OnHandBefore    int
	OnHandAfter     int
	AllocatedBefore int
	AllocatedAfter  int

	ReferenceID   *string
	ReferenceType *string
	Notes         *string
	CreatedBy     *uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Append(ctx context.Context, draft EntryDraft) (*models.LedgerEntry, error) {
	if draft.VariantID == uuid.Nil {
		return nil, fmt.Errorf("variant id is required")
	}
	if draft.SKU == "" {
		return nil, fmt.Errorf("sku is required")
	}
	if !draft.Reason.IsValid() {
		return nil, fmt.Errorf("invalid movement reason %q", draft.Reason)
	}
	if draft.Channel != nil && !draft.Channel.IsValid() {
		return nil, fmt.Errorf("invalid channel %q", *draft.Channel)
	}

	entry := &models.LedgerEntry{
		ID:              uuid.New(),
		VariantID:       draft.VariantID,
		SKU:             draft.SKU,
		Reason:          draft.Reason,
		Channel:         draft.Channel,
		OnHandBefore:    draft.OnHandBefore,
		OnHandAfter:     draft.OnHandAfter,
		OnHandChange:    draft.OnHandAfter - draft.OnHandBefore,
		AllocatedBefore: draft.AllocatedBefore,
		AllocatedAfter:  draft.AllocatedAfter,
		AllocatedChange: draft.AllocatedAfter - draft.AllocatedBefore,
		ReferenceID:     draft.ReferenceID,
		ReferenceType:   draft.ReferenceType,
		Notes:           draft.Notes,
		CreatedBy:       draft.CreatedBy,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ByVariant(ctx context.Context, variantID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error) {
	if variantID == uuid.Nil {
		return nil, "", fmt.Errorf("variant id is required")
	}
	return s.repo.ListByVariant(ctx, variantID, params)
}

func (s *service) ByReference(ctx context.Context, referenceID string) ([]models.LedgerEntry, error) {
	if referenceID == "" {
		return nil, fmt.Errorf("reference id is required")
	}
	return s.repo.ListByReference(ctx, referenceID)
}

func (s *service) Recent(ctx context.Context, params pagination.Params) ([]models.LedgerEntry, string, error) {
	return s.repo.ListRecent(ctx, params)
}
