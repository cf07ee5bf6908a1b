package models

import "time"

// CustomFieldDef is an admin-defined product attribute with its allowed
// options.
type CustomFieldDef struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// StoreSettings is a singleton row holding the invoice counter and the
// admin option lists used by the inventory screens.
type StoreSettings struct {
	ID                uint             `gorm:"column:id;primaryKey"`
	NextInvoiceNumber int64            `gorm:"column:next_invoice_number;not null;default:1"`
	Brands            []string         `gorm:"column:brands;type:jsonb;serializer:json"`
	Colors            []string         `gorm:"column:colors;type:jsonb;serializer:json"`
	Thicknesses       []string         `gorm:"column:thicknesses;type:jsonb;serializer:json"`
	ProductTypes      []string         `gorm:"column:product_types;type:jsonb;serializer:json"`
	CustomFields      []CustomFieldDef `gorm:"column:custom_fields;type:jsonb;serializer:json"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
