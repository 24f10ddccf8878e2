package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kasirpos/kasirpos-backend/pkg/db"
	"github.com/kasirpos/kasirpos-backend/pkg/db/models"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
	"github.com/kasirpos/kasirpos-backend/pkg/pagination"
)

const (
	maxCodeLen = 50
	maxNameLen = 200
)

// Service exposes catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*pagination.Page[ProductDTO], error)
	RecentProducts(ctx context.Context, n int) ([]ProductDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProduct validates and persists a new catalog entry.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if err := validateProductFields(code, name, input.PriceCents, input.StockQuantity); err != nil {
		return nil, err
	}

	if taken, err := s.codeTaken(ctx, code, uuid.Nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product code")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product code already exists").
			WithDetails(map[string]string{"code": "already exists"})
	}

	product := &models.Product{
		Code:          code,
		Name:          name,
		PriceCents:    input.PriceCents,
		StockQuantity: input.StockQuantity,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_code") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product code already exists").
				WithDetails(map[string]string{"code": "already exists"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(created), nil
}

// UpdateProduct applies a partial mutation to an existing product.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.Code != nil {
		product.Code = strings.TrimSpace(*input.Code)
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}

	if err := validateProductFields(product.Code, product.Name, product.PriceCents, product.StockQuantity); err != nil {
		return nil, err
	}

	if taken, err := s.codeTaken(ctx, product.Code, product.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product code")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product code already exists").
			WithDetails(map[string]string{"code": "already exists"})
	}

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_code") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product code already exists").
				WithDetails(map[string]string{"code": "already exists"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return FromModel(saved), nil
}

// DeleteProduct removes a product unless recorded sales still reference it.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}

	referenced, err := s.repo.SaleLineCount(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check sale references")
	}
	if referenced > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product has recorded sales and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

// GetProduct loads one catalog entry.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

// ListProducts returns one page of the catalog, optionally filtered by search.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*pagination.Page[ProductDTO], error) {
	items, total, err := s.repo.List(ctx, input.Search, input.Page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	page := pagination.NewPage(fromModels(items), input.Page, total)
	return &page, nil
}

// RecentProducts returns the latest catalog additions for the cashier screen.
func (s *service) RecentProducts(ctx context.Context, n int) ([]ProductDTO, error) {
	if n <= 0 {
		n = pagination.DefaultPageSize
	}
	items, err := s.repo.Recent(ctx, n)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent products")
	}
	return fromModels(items), nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

// codeTaken reports whether another product already owns the code. The unique
// index idx_products_code stays as the backstop for concurrent writers.
func (s *service) codeTaken(ctx context.Context, code string, excludeID uuid.UUID) (bool, error) {
	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}

func validateProductFields(code, name string, priceCents int64, stock int) error {
	details := map[string]string{}
	if code == "" {
		details["code"] = "is required"
	} else if len(code) > maxCodeLen {
		details["code"] = fmt.Sprintf("must be at most %d characters", maxCodeLen)
	}
	if name == "" {
		details["name"] = "is required"
	} else if len(name) > maxNameLen {
		details["name"] = fmt.Sprintf("must be at most %d characters", maxNameLen)
	}
	if priceCents < 0 {
		details["price_cents"] = "must not be negative"
	}
	if stock < 0 {
		details["stock_quantity"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
