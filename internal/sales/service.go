package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kasirpos/kasirpos-backend/internal/products"
	"github.com/kasirpos/kasirpos-backend/pkg/db"
	"github.com/kasirpos/kasirpos-backend/pkg/db/models"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
	"github.com/kasirpos/kasirpos-backend/pkg/logger"
	"github.com/kasirpos/kasirpos-backend/pkg/pagination"
)

// Service records and reads sales.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*SaleDTO, error)
	GetSale(ctx context.Context, saleID uuid.UUID) (*SaleDTO, error)
	ListSales(ctx context.Context, input ListSalesInput) (*pagination.Page[SaleDTO], error)
}

type service struct {
	repo     *Repository
	products *products.Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs the sale recording service.
func NewService(repo *Repository, productRepo *products.Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, products: productRepo, dbClient: dbClient, logg: logg}, nil
}

// Checkout records a sale atomically: it snapshots catalog prices, decrements
// stock with a floor at zero, and persists the sale with its lines. Any
// failure rolls the whole attempt back.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*SaleDTO, error) {
	if input.CashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing cashier")
	}
	lines, err := mergeLines(input.Lines)
	if err != nil {
		return nil, err
	}
	if input.PaidCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"paid_cents": "must not be negative"})
	}

	var sale *models.Sale
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)

		var total int64
		saleLines := make([]models.SaleLine, 0, len(lines))
		for _, line := range lines {
			product, err := productRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
						WithDetails(map[string]any{"product_id": line.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
			}

			ok, err := productRepo.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				if s.logg != nil {
					logCtx := s.logg.WithProductCode(ctx, product.Code)
					s.logg.Warn(logCtx, "checkout.insufficient_stock")
				}
				return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
					WithDetails(map[string]any{
						"product_id": product.ID,
						"code":       product.Code,
						"available":  product.StockQuantity,
						"requested":  line.Quantity,
					})
			}

			total += product.PriceCents * int64(line.Quantity)
			saleLines = append(saleLines, models.SaleLine{
				ProductID:      product.ID,
				UnitPriceCents: product.PriceCents,
				Quantity:       line.Quantity,
			})
		}

		if input.PaidCents < total {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient payment").
				WithDetails(map[string]any{"total_cents": total, "paid_cents": input.PaidCents})
		}

		created, err := s.repo.WithTx(tx).Create(ctx, &models.Sale{
			CashierID:  input.CashierID,
			TotalCents: total,
			PaidCents:  input.PaidCents,
			Lines:      saleLines,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist sale")
		}
		sale = created
		return nil
	})
	if txErr != nil {
		if typed := pkgerrors.As(txErr); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, txErr, "checkout")
	}

	if s.logg != nil {
		logCtx := s.logg.WithSaleID(ctx, sale.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"total_cents": sale.TotalCents,
			"paid_cents":  sale.PaidCents,
			"line_count":  len(sale.Lines),
		})
		s.logg.Info(logCtx, "sale.recorded")
	}

	return FromModel(sale), nil
}

// GetSale loads one recorded sale with its lines.
func (s *service) GetSale(ctx context.Context, saleID uuid.UUID) (*SaleDTO, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
	}
	return FromModel(sale), nil
}

// ListSales returns the sale history newest-first.
func (s *service) ListSales(ctx context.Context, input ListSalesInput) (*pagination.Page[SaleDTO], error) {
	items, total, err := s.repo.List(ctx, input.Page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	page := pagination.NewPage(fromModels(items), input.Page, total)
	return &page, nil
}

// mergeLines validates quantities and collapses duplicate product rows into
// one line so the stock decrement runs once per product.
func mergeLines(lines []CheckoutLineInput) ([]CheckoutLineInput, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"lines": "at least one line is required"})
	}

	merged := make([]CheckoutLineInput, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"product_id": "is required"})
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"quantity": "must be greater than 0"})
		}
		if at, ok := index[line.ProductID]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}
