package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
)

// VariantRepository wires together variant persistence helpers.
type VariantRepository struct {
	db *gorm.DB
}

// NewVariantRepository builds a repository tied to the provided GORM DB.
func NewVariantRepository(db *gorm.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *VariantRepository) WithTx(tx *gorm.DB) *VariantRepository {
	if tx == nil {
		return r
	}
	return &VariantRepository{db: tx}
}

// FindByID loads the variant without associations.
func (r *VariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// GetVariantDetail loads the variant with price tiers (deepest tier first)
// and channel buffers.
func (r *VariantRepository) GetVariantDetail(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_qty DESC")
		}).
		Preload("ChannelBuffers").
		First(&variant, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindBySKU loads a variant by its unique SKU.
func (r *VariantRepository) FindBySKU(ctx context.Context, sku string) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_qty DESC")
		}).
		Preload("ChannelBuffers").
		First(&variant, "sku = ?", sku).
		Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// Create inserts a new variant row.
func (r *VariantRepository) Create(ctx context.Context, variant *models.Variant) (*models.Variant, error) {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// Save updates an existing variant row.
func (r *VariantRepository) Save(ctx context.Context, variant *models.Variant) (*models.Variant, error) {
	if err := r.db.WithContext(ctx).Save(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// ReplacePriceTiers replaces all price tiers for the variant.
func (r *VariantRepository) ReplacePriceTiers(ctx context.Context, variantID uuid.UUID, tiers []models.PriceTier) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("variant_id = ?", variantID).Delete(&models.PriceTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return tx.Create(&tiers).Error
}

// ReplaceChannelBuffers replaces the per-channel buffer reservations.
func (r *VariantRepository) ReplaceChannelBuffers(ctx context.Context, variantID uuid.UUID, buffers []models.ChannelBuffer) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("variant_id = ?", variantID).Delete(&models.ChannelBuffer{}).Error; err != nil {
		return err
	}
	if len(buffers) == 0 {
		return nil
	}
	return tx.Create(&buffers).Error
}

// ChannelMappingRepository resolves external SKUs to internal variants.
type ChannelMappingRepository struct {
	db *gorm.DB
}

// NewChannelMappingRepository builds the mapping repository.
func NewChannelMappingRepository(db *gorm.DB) *ChannelMappingRepository {
	return &ChannelMappingRepository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *ChannelMappingRepository) WithTx(tx *gorm.DB) *ChannelMappingRepository {
	if tx == nil {
		return r
	}
	return &ChannelMappingRepository{db: tx}
}

// FindActive resolves an active mapping for the channel/external-SKU pair.
func (r *ChannelMappingRepository) FindActive(ctx context.Context, channel enums.ChannelType, externalSKU string) (*models.ChannelMapping, error) {
	var mapping models.ChannelMapping
	err := r.db.WithContext(ctx).
		Where("channel = ? AND external_sku = ? AND state = ?", channel, externalSKU, enums.LifecycleStateActive).
		First(&mapping).
		Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// Upsert creates or refreshes a mapping for the channel/external-SKU pair.
func (r *ChannelMappingRepository) Upsert(ctx context.Context, mapping *models.ChannelMapping) error {
	return r.db.WithContext(ctx).Save(mapping).Error
}
