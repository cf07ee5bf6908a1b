package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/enums"
)

// Sale is a finalized memo. The financial identities
// final_amount = sub_total - discount and due_amount = final_amount - paid_amount
// hold after every mutation; due may go negative when the customer holds a
// credit.
type Sale struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceNumber   int64                `gorm:"column:invoice_number;not null;uniqueIndex"`
	CustomerName    string               `gorm:"column:customer_name;not null"`
	CustomerPhone   string               `gorm:"column:customer_phone;not null;default:'N/A'"`
	CustomerAddress *string              `gorm:"column:customer_address"`
	SubTotal        int                  `gorm:"column:sub_total;not null"`
	Discount        int                  `gorm:"column:discount;not null;default:0"`
	FinalAmount     int                  `gorm:"column:final_amount;not null"`
	PaidAmount      int                  `gorm:"column:paid_amount;not null;default:0"`
	DueAmount       int                  `gorm:"column:due_amount;not null"`
	DeliveryStatus  enums.DeliveryStatus `gorm:"column:delivery_status;type:text;not null;default:'delivered'"`
	SoldBy          string               `gorm:"column:sold_by;not null"`
	Note            *string              `gorm:"column:note"`
	Items           []SaleItem           `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments        []Payment            `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
