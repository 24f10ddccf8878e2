package reports

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
)

// LowStockThreshold marks products that need restocking on the dashboard.
const LowStockThreshold = 5

// Dashboard summarizes the store for the landing screen.
type Dashboard struct {
	TodaySalesCount   int64 `json:"today_sales_count"`
	TodayRevenueCents int64 `json:"today_revenue_cents"`
	ProductCount      int64 `json:"product_count"`
	LowStockCount     int64 `json:"low_stock_count"`
	LowStockThreshold int   `json:"low_stock_threshold"`
}

type salesAggregator interface {
	CountSince(ctx context.Context, cutoff time.Time) (int64, error)
	RevenueSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type catalogCounter interface {
	CountAll(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

// Service computes dashboard aggregates.
type Service struct {
	sales    salesAggregator
	catalog  catalogCounter
	nowFunc  func() time.Time
	location *time.Location
}

// NewService constructs the reporting service. The location controls where
// "today" starts for the daily aggregates.
func NewService(sales salesAggregator, catalog catalogCounter, loc *time.Location) (*Service, error) {
	if sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		sales:    sales,
		catalog:  catalog,
		nowFunc:  time.Now,
		location: loc,
	}, nil
}

// GetDashboard builds the landing screen aggregates.
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	now := s.nowFunc().In(s.location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	salesCount, err := s.sales.CountSince(ctx, startOfDay)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count today's sales")
	}
	revenue, err := s.sales.RevenueSince(ctx, startOfDay)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum today's revenue")
	}
	productCount, err := s.catalog.CountAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	lowStock, err := s.catalog.CountLowStock(ctx, LowStockThreshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count low stock")
	}

	return &Dashboard{
		TodaySalesCount:   salesCount,
		TodayRevenueCents: revenue,
		ProductCount:      productCount,
		LowStockCount:     lowStock,
		LowStockThreshold: LowStockThreshold,
	}, nil
}
