package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/pagination"
)

// Repository manages persistence for ledger entries. The ledger is
// append-only: there is deliberately no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListByVariant(ctx context.Context, variantID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error)
	ListByReference(ctx context.Context, referenceID string) ([]models.LedgerEntry, error)
	ListRecent(ctx context.Context, params pagination.Params) ([]models.LedgerEntry, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByVariant(ctx context.Context, variantID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error) {
	qb := r.db.WithContext(ctx).Where("variant_id = ?", variantID)
	return r.listPage(qb, params)
}

func (r *repository) ListByReference(ctx context.Context, referenceID string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at DESC").Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListRecent(ctx context.Context, params pagination.Params) ([]models.LedgerEntry, string, error) {
	return r.listPage(r.db.WithContext(ctx), params)
}

func (r *repository) listPage(qb *gorm.DB, params pagination.Params) ([]models.LedgerEntry, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var entries []models.LedgerEntry
	err = qb.Order("created_at DESC").Order("id DESC").
		Limit(limitWithBuffer).
		Find(&entries).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(entries) > pageSize {
		entries = entries[:pageSize]
		last := entries[len(entries)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, nextCursor, nil
}
