package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/packwise/packwise-backend/pkg/db"
	"github.com/packwise/packwise-backend/pkg/db/models"
	"github.com/packwise/packwise-backend/pkg/enums"
	pkgerrors "github.com/packwise/packwise-backend/pkg/errors"
)

// Service exposes variant catalog management. Inventory counters are owned by
// the allocation machine: catalog writes set the starting counters on create
// and never touch them again.
type Service interface {
	CreateVariant(ctx context.Context, input CreateVariantInput) (*models.Variant, error)
	UpdateVariant(ctx context.Context, variantID uuid.UUID, input UpdateVariantInput) (*models.Variant, error)
	GetVariant(ctx context.Context, variantID uuid.UUID) (*models.Variant, error)
}

// PriceTierInput defines a tiered unit price for a given minimum quantity.
type PriceTierInput struct {
	MinQty    int
	UnitPrice decimal.Decimal
}

// ChannelBufferInput holds back quantity from one sales channel.
type ChannelBufferInput struct {
	Channel   enums.ChannelType
	BufferQty int
}

// CreateVariantInput holds the validated payload to create a variant.
type CreateVariantInput struct {
	SKU      string
	Name     string
	Size     *string
	Color    *string
	PackType *string

	OnHand            int
	SafetyStock       int
	LowStockThreshold int

	PriceTiers     []PriceTierInput
	ChannelBuffers []ChannelBufferInput
}

// UpdateVariantInput holds optional mutation values. Counter fields are
// deliberately absent; use the inventory service to move stock.
type UpdateVariantInput struct {
	Name     *string
	Size     *string
	Color    *string
	PackType *string

	SafetyStock       *int
	LowStockThreshold *int
	State             *enums.LifecycleState

	PriceTiers     *[]PriceTierInput
	ChannelBuffers *[]ChannelBufferInput
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *VariantRepository
	dbClient txRunner
}

// NewService constructs a catalog service instance.
func NewService(repo *VariantRepository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateVariant(ctx context.Context, input CreateVariantInput) (*models.Variant, error) {
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.OnHand < 0 || input.SafetyStock < 0 || input.LowStockThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock counters must be non-negative")
	}
	if err := validatePriceTiers(input.PriceTiers); err != nil {
		return nil, err
	}
	if err := validateChannelBuffers(input.ChannelBuffers); err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		variant := &models.Variant{
			ID:                uuid.New(),
			SKU:               strings.TrimSpace(input.SKU),
			Name:              strings.TrimSpace(input.Name),
			Size:              input.Size,
			Color:             input.Color,
			PackType:          input.PackType,
			OnHand:            input.OnHand,
			SafetyStock:       input.SafetyStock,
			LowStockThreshold: input.LowStockThreshold,
			State:             enums.LifecycleStateActive,
		}
		created, err := txRepo.Create(ctx, variant)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert variant")
		}
		createdID = created.ID

		if err := txRepo.ReplacePriceTiers(ctx, created.ID, buildTierRows(created.ID, input.PriceTiers)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace price tiers")
		}
		if err := txRepo.ReplaceChannelBuffers(ctx, created.ID, buildBufferRows(created.ID, input.ChannelBuffers)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace channel buffers")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
	}

	return s.GetVariant(ctx, createdID)
}

func (s *service) UpdateVariant(ctx context.Context, variantID uuid.UUID, input UpdateVariantInput) (*models.Variant, error) {
	if input.PriceTiers != nil {
		if err := validatePriceTiers(*input.PriceTiers); err != nil {
			return nil, err
		}
	}
	if input.ChannelBuffers != nil {
		if err := validateChannelBuffers(*input.ChannelBuffers); err != nil {
			return nil, err
		}
	}
	if input.State != nil && !input.State.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid lifecycle state")
	}

	variant, err := s.repo.FindByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		applyUpdateToVariant(variant, input)
		if _, err := txRepo.Save(ctx, variant); err != nil {
			return err
		}

		if input.PriceTiers != nil {
			if err := txRepo.ReplacePriceTiers(ctx, variant.ID, buildTierRows(variant.ID, *input.PriceTiers)); err != nil {
				return err
			}
		}
		if input.ChannelBuffers != nil {
			if err := txRepo.ReplaceChannelBuffers(ctx, variant.ID, buildBufferRows(variant.ID, *input.ChannelBuffers)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant")
	}

	return s.GetVariant(ctx, variantID)
}

func (s *service) GetVariant(ctx context.Context, variantID uuid.UUID) (*models.Variant, error) {
	variant, err := s.repo.GetVariantDetail(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	return variant, nil
}

func validatePriceTiers(tiers []PriceTierInput) error {
	seen := make(map[int]struct{}, len(tiers))
	for _, tier := range tiers {
		if tier.MinQty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "price tier min_qty must be at least 1")
		}
		if tier.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price tier unit_price must be non-negative")
		}
		if _, ok := seen[tier.MinQty]; ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate price tier min_qty")
		}
		seen[tier.MinQty] = struct{}{}
	}
	return nil
}

func validateChannelBuffers(buffers []ChannelBufferInput) error {
	seen := make(map[enums.ChannelType]struct{}, len(buffers))
	for _, buffer := range buffers {
		if !buffer.Channel.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid channel")
		}
		if buffer.BufferQty < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "buffer_qty must be non-negative")
		}
		if _, ok := seen[buffer.Channel]; ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate channel buffer")
		}
		seen[buffer.Channel] = struct{}{}
	}
	return nil
}

func buildTierRows(variantID uuid.UUID, tiers []PriceTierInput) []models.PriceTier {
	rows := make([]models.PriceTier, len(tiers))
	for i, tier := range tiers {
		rows[i] = models.PriceTier{
			ID:        uuid.New(),
			VariantID: variantID,
			MinQty:    tier.MinQty,
			UnitPrice: tier.UnitPrice,
		}
	}
	return rows
}

func buildBufferRows(variantID uuid.UUID, buffers []ChannelBufferInput) []models.ChannelBuffer {
	rows := make([]models.ChannelBuffer, len(buffers))
	for i, buffer := range buffers {
		rows[i] = models.ChannelBuffer{
			VariantID: variantID,
			Channel:   buffer.Channel,
			BufferQty: buffer.BufferQty,
		}
	}
	return rows
}

func applyUpdateToVariant(variant *models.Variant, input UpdateVariantInput) {
	if input.Name != nil {
		variant.Name = strings.TrimSpace(*input.Name)
	}
	if input.Size != nil {
		variant.Size = input.Size
	}
	if input.Color != nil {
		variant.Color = input.Color
	}
	if input.PackType != nil {
		variant.PackType = input.PackType
	}
	if input.SafetyStock != nil {
		variant.SafetyStock = *input.SafetyStock
	}
	if input.LowStockThreshold != nil {
		variant.LowStockThreshold = *input.LowStockThreshold
	}
	if input.State != nil {
		variant.State = *input.State
	}
}
