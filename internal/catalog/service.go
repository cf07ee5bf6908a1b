package catalog

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

// DefaultNextInvoiceNumber is where the invoice counter starts for a fresh
// store.
const DefaultNextInvoiceNumber = 1001

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the product catalog and store settings.
type Service interface {
	CreateGroup(ctx context.Context, input CreateGroupInput) (*models.ProductGroup, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*models.ProductGroup, error)
	ListGroups(ctx context.Context) ([]models.ProductGroup, error)
	UpdateGroup(ctx context.Context, id uuid.UUID, input UpdateGroupInput) (*models.ProductGroup, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	SetVariantSellingPrice(ctx context.Context, groupID, variantID uuid.UUID, price int) (*models.ProductVariant, error)
	DeleteVariant(ctx context.Context, groupID, variantID uuid.UUID) error
	GetSettings(ctx context.Context) (*models.StoreSettings, error)
	UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*models.StoreSettings, error)
}

// CreateGroupInput describes a new product category.
type CreateGroupInput struct {
	ProductType     string
	Brand           string
	Color           string
	Thickness       string
	CustomValues    map[string]string
	CalculationMode enums.CalculationMode
}

// UpdateGroupInput carries editable group attributes.
type UpdateGroupInput struct {
	ProductType  *string
	Brand        *string
	Color        *string
	Thickness    *string
	CustomValues map[string]string
}

// UpdateSettingsInput replaces the admin option lists. Nil slices leave the
// stored value alone.
type UpdateSettingsInput struct {
	Brands       []string
	Colors       []string
	Thicknesses  []string
	ProductTypes []string
	CustomFields []models.CustomFieldDef
}

type service struct {
	tx   txRunner
	repo Repository
	logg *logger.Logger
}

// NewService wires the catalog service.
func NewService(tx txRunner, repo Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, logg: logg}, nil
}

func (s *service) CreateGroup(ctx context.Context, input CreateGroupInput) (*models.ProductGroup, error) {
	if input.ProductType == "" {
		return nil, errors.New(errors.CodeValidation, "product type is required")
	}
	if input.Brand == "" {
		return nil, errors.New(errors.CodeValidation, "brand is required")
	}
	if !input.CalculationMode.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid calculation mode %q", input.CalculationMode))
	}

	group := &models.ProductGroup{
		ProductType:     input.ProductType,
		Brand:           input.Brand,
		Color:           orDefault(input.Color, "N/A"),
		Thickness:       orDefault(input.Thickness, "Standard"),
		CustomValues:    input.CustomValues,
		CalculationMode: input.CalculationMode,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating product group")
	}
	return group, nil
}

func (s *service) GetGroup(ctx context.Context, id uuid.UUID) (*models.ProductGroup, error) {
	group, err := s.repo.FindGroupByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product group not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading product group")
	}
	return group, nil
}

func (s *service) ListGroups(ctx context.Context) ([]models.ProductGroup, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing product groups")
	}
	return groups, nil
}

func (s *service) UpdateGroup(ctx context.Context, id uuid.UUID, input UpdateGroupInput) (*models.ProductGroup, error) {
	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ProductType != nil {
		if *input.ProductType == "" {
			return nil, errors.New(errors.CodeValidation, "product type cannot be empty")
		}
		group.ProductType = *input.ProductType
	}
	if input.Brand != nil {
		if *input.Brand == "" {
			return nil, errors.New(errors.CodeValidation, "brand cannot be empty")
		}
		group.Brand = *input.Brand
	}
	if input.Color != nil {
		group.Color = orDefault(*input.Color, "N/A")
	}
	if input.Thickness != nil {
		group.Thickness = orDefault(*input.Thickness, "Standard")
	}
	if input.CustomValues != nil {
		group.CustomValues = input.CustomValues
	}

	if err := s.repo.SaveGroup(ctx, group); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "saving product group")
	}
	return group, nil
}

func (s *service) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetGroup(ctx, id); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteGroup(ctx, id)
	})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting product group")
	}
	s.logg.Info(s.logg.WithField(ctx, "group_id", id.String()), "product group deleted")
	return nil
}

func (s *service) SetVariantSellingPrice(ctx context.Context, groupID, variantID uuid.UUID, price int) (*models.ProductVariant, error) {
	if price < 0 {
		return nil, errors.New(errors.CodeValidation, "selling price cannot be negative")
	}
	variant, err := s.repo.FindVariantByID(ctx, groupID, variantID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "variant not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading variant")
	}
	variant.SellingPrice = &price
	if err := s.repo.SaveVariant(ctx, variant); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "saving variant")
	}
	return variant, nil
}

func (s *service) DeleteVariant(ctx context.Context, groupID, variantID uuid.UUID) error {
	variant, err := s.repo.FindVariantByID(ctx, groupID, variantID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "variant not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "loading variant")
	}
	if variant.StockPieces != 0 {
		return errors.New(errors.CodeConflict, "variant stock must be zero before deletion")
	}
	if err := s.repo.DeleteVariant(ctx, groupID, variantID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting variant")
	}
	return nil
}

func (s *service) GetSettings(ctx context.Context) (*models.StoreSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		settings = defaultSettings()
		if err := s.repo.SaveSettings(ctx, settings); err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "seeding store settings")
		}
		return settings, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading store settings")
	}
	return settings, nil
}

func (s *service) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*models.StoreSettings, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if input.Brands != nil {
		settings.Brands = input.Brands
	}
	if input.Colors != nil {
		settings.Colors = input.Colors
	}
	if input.Thicknesses != nil {
		settings.Thicknesses = input.Thicknesses
	}
	if input.ProductTypes != nil {
		settings.ProductTypes = input.ProductTypes
	}
	if input.CustomFields != nil {
		settings.CustomFields = input.CustomFields
	}

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "saving store settings")
	}
	return settings, nil
}

func defaultSettings() *models.StoreSettings {
	return &models.StoreSettings{
		NextInvoiceNumber: DefaultNextInvoiceNumber,
		Brands:            []string{"AKS", "PHP", "TK", "KDS", "Appollo", "Seven Rings", "Anowar", "Aramit", "Local"},
		Colors:            []string{"White (Boicha)", "Master Green", "Green", "Blue", "Red", "Silver", "Plain/Natural", "Charcoal"},
		Thicknesses:       []string{"0.19mm", "0.22mm", "0.25mm", "0.32mm", "0.34mm", "0.42mm", "0.46mm", "Standard", "N/A"},
		ProductTypes:      []string{"Corrugated Tin", "Ridge", "Flashing", "Screws/Nuts", "Other"},
		CustomFields:      []models.CustomFieldDef{},
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
