package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sale is the persisted record of a completed checkout. It is written once
// by the sale processor and never mutated afterwards.
type Sale struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CashierID  uuid.UUID  `gorm:"column:cashier_id;type:uuid;not null"`
	TotalCents int64      `gorm:"column:total_cents;not null"`
	PaidCents  int64      `gorm:"column:paid_cents;not null"`
	Lines      []SaleLine `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
