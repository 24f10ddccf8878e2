package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleLine is one product's contribution to a sale. UnitPriceCents is a
// snapshot of the catalog price at checkout time; later price edits must not
// touch it.
type SaleLine struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SaleID         uuid.UUID `gorm:"column:sale_id;type:uuid;not null;index:idx_sale_lines_sale_id"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:idx_sale_lines_product_id"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
}

func (l *SaleLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
