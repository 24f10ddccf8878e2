package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/kasirpos/kasirpos-backend/pkg/db/models"
	"github.com/kasirpos/kasirpos-backend/pkg/pagination"
)

// CheckoutLineInput is one cart row posted by the register.
type CheckoutLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutInput is the validated payload for recording a sale.
type CheckoutInput struct {
	CashierID uuid.UUID
	Lines     []CheckoutLineInput
	PaidCents int64
}

// SaleLineDTO is the transport shape of one recorded sale line.
type SaleLineDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// SaleDTO is the transport shape of a recorded sale, including the change due
// back to the customer.
type SaleDTO struct {
	ID          uuid.UUID     `json:"id"`
	CashierID   uuid.UUID     `json:"cashier_id"`
	TotalCents  int64         `json:"total_cents"`
	PaidCents   int64         `json:"paid_cents"`
	ChangeCents int64         `json:"change_cents"`
	Lines       []SaleLineDTO `json:"lines"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ListSalesInput drives the sale history listing.
type ListSalesInput struct {
	Page pagination.Params
}

func FromModel(s *models.Sale) *SaleDTO {
	if s == nil {
		return nil
	}
	lines := make([]SaleLineDTO, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, SaleLineDTO{
			ProductID:      l.ProductID,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
			LineTotalCents: l.UnitPriceCents * int64(l.Quantity),
		})
	}
	return &SaleDTO{
		ID:          s.ID,
		CashierID:   s.CashierID,
		TotalCents:  s.TotalCents,
		PaidCents:   s.PaidCents,
		ChangeCents: s.PaidCents - s.TotalCents,
		Lines:       lines,
		CreatedAt:   s.CreatedAt,
	}
}

func fromModels(items []models.Sale) []SaleDTO {
	out := make([]SaleDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
