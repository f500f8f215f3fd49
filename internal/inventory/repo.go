package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
)

// Repository owns counter persistence for the allocation machine. It reads
// variants lean (no associations) since only the counters matter here.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindVariant loads the variant counters without associations.
func (r *Repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindVariantForUpdate loads the variant counters holding a row lock for the
// remainder of the transaction, so a read-then-write counter change cannot
// race another writer. SQLite has no FOR UPDATE and serializes writers, so
// the clause is applied on Postgres only.
func (r *Repository) FindVariantForUpdate(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ChannelBufferQty returns the configured buffer for the variant/channel pair,
// zero when none is configured.
func (r *Repository) ChannelBufferQty(ctx context.Context, variantID uuid.UUID, channel enums.ChannelType) (int, error) {
	var buffer models.ChannelBuffer
	err := r.db.WithContext(ctx).
		First(&buffer, "variant_id = ? AND channel = ?", variantID, channel).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return buffer.BufferQty, nil
}

// ChannelBuffers lists every configured buffer for the variant.
func (r *Repository) ChannelBuffers(ctx context.Context, variantID uuid.UUID) ([]models.ChannelBuffer, error) {
	var buffers []models.ChannelBuffer
	err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Find(&buffers).
		Error
	if err != nil {
		return nil, err
	}
	return buffers, nil
}

// AllocateConditional increments allocated only while availability minus the
// channel buffer still covers qty. The guard lives in the WHERE clause so two
// concurrent allocations cannot both pass a stale check. Returns false when
// the row was not updated.
func (r *Repository) AllocateConditional(ctx context.Context, variantID uuid.UUID, qty, bufferQty int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE variants
		 SET allocated = allocated + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND on_hand - allocated - safety_stock - ? >= ?`,
		qty, variantID, bufferQty, qty,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetCounters writes both counters. Callers compute clamped values first.
func (r *Repository) SetCounters(ctx context.Context, variantID uuid.UUID, onHand, allocated int) error {
	return r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ?", variantID).
		Updates(map[string]any{"on_hand": onHand, "allocated": allocated}).
		Error
}
