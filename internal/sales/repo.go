package sales

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/internal/catalog"
	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
)

// ListFilter narrows sale listings.
type ListFilter struct {
	From   time.Time
	To     time.Time
	Query  string // matches customer name or phone
	Limit  int
	Offset int
}

// Repository persists sales, their line items and payment history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.Sale) error
	FindSaleByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	ListSales(ctx context.Context, filter ListFilter) ([]models.Sale, int64, error)
	ListDueSales(ctx context.Context) ([]models.Sale, error)
	SaveSale(ctx context.Context, sale *models.Sale) error
	ReplaceItems(ctx context.Context, saleID uuid.UUID, items []models.SaleItem) error
	DeleteSale(ctx context.Context, id uuid.UUID) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	NextInvoiceNumber(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) FindSaleByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		}).
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) ListSales(ctx context.Context, filter ListFilter) ([]models.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Sale{})
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("customer_name LIKE ? OR customer_phone LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var sales []models.Sale
	err := query.
		Preload("Items").
		Preload("Payments").
		Order("created_at DESC").
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

func (r *repository) ListDueSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("due_amount > 0").
		Order("due_amount DESC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) SaveSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).
		Omit("Items", "Payments").
		Save(sale).Error
}

func (r *repository) ReplaceItems(ctx context.Context, saleID uuid.UUID, items []models.SaleItem) error {
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].SaleID = saleID
		items[i].ID = uuid.Nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) DeleteSale(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", id).
		Delete(&models.Payment{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", id).
		Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Sale{}).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// NextInvoiceNumber hands out the next sequential invoice number from the
// settings singleton. Call inside the checkout transaction so the counter
// and the sale commit together. The counter bump is a single UPDATE so
// concurrent checkouts serialize on the settings row.
func (r *repository) NextInvoiceNumber(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)

	var settings models.StoreSettings
	err := db.First(&settings).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.StoreSettings{NextInvoiceNumber: catalog.DefaultNextInvoiceNumber + 1}
		if err := db.Create(&settings).Error; err != nil {
			return 0, err
		}
		return catalog.DefaultNextInvoiceNumber, nil
	}
	if err != nil {
		return 0, err
	}

	res := db.Model(&models.StoreSettings{}).
		Where("id = ?", settings.ID).
		UpdateColumn("next_invoice_number", gorm.Expr("next_invoice_number + 1"))
	if res.Error != nil {
		return 0, res.Error
	}

	var bumped models.StoreSettings
	if err := db.First(&bumped, "id = ?", settings.ID).Error; err != nil {
		return 0, err
	}
	return bumped.NextInvoiceNumber - 1, nil
}
