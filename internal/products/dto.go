package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/kasirpos/kasirpos-backend/pkg/db/models"
	"github.com/kasirpos/kasirpos-backend/pkg/pagination"
)

// ProductDTO is the transport shape for catalog entries.
type ProductDTO struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	PriceCents    int64     `json:"price_cents"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateProductInput holds the validated payload to create a catalog entry.
type CreateProductInput struct {
	Code          string
	Name          string
	PriceCents    int64
	StockQuantity int
}

// UpdateProductInput holds optional mutation values for a catalog entry.
type UpdateProductInput struct {
	Code          *string
	Name          *string
	PriceCents    *int64
	StockQuantity *int
}

// ListProductsInput drives catalog listing and search.
type ListProductsInput struct {
	Search string
	Page   pagination.Params
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		PriceCents:    p.PriceCents,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromModels(items []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
