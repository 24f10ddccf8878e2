package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a catalog entry sold at the register. PriceCents is always a
// whole non-negative amount; StockQuantity is floored at zero by the sale
// processor's guarded decrement.
type Product struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Code          string    `gorm:"column:code;size:50;not null;uniqueIndex:idx_products_code"`
	Name          string    `gorm:"column:name;size:200;not null"`
	PriceCents    int64     `gorm:"column:price_cents;not null"`
	StockQuantity int       `gorm:"column:stock_quantity;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
