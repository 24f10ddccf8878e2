package sales

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kasirpos/kasirpos-backend/internal/products"
	"github.com/kasirpos/kasirpos-backend/pkg/db"
	"github.com/kasirpos/kasirpos-backend/pkg/db/models"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:sales_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Product{}, &models.Sale{}, &models.SaleLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), products.NewRepository(conn), db.NewWithConn(conn), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, code string, priceCents int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{Code: code, Name: "Product " + code, PriceCents: priceCents, StockQuantity: stock}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product %s: %v", code, err)
	}
	return product
}

func TestCheckoutRecordsSale(t *testing.T) {
	svc, conn := newTestService(t)
	coffee := seedProduct(t, conn, "KOPI-001", 10000, 10)
	bread := seedProduct(t, conn, "ROTI-001", 5000, 10)
	cashier := uuid.New()

	sale, err := svc.Checkout(context.Background(), CheckoutInput{
		CashierID: cashier,
		PaidCents: 30000,
		Lines: []CheckoutLineInput{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: bread.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if sale.TotalCents != 25000 {
		t.Fatalf("expected total 25000, got %d", sale.TotalCents)
	}
	if sale.ChangeCents != 5000 {
		t.Fatalf("expected change 5000, got %d", sale.ChangeCents)
	}
	if sale.CashierID != cashier {
		t.Fatalf("unexpected cashier %s", sale.CashierID)
	}
	if len(sale.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(sale.Lines))
	}

	var stored models.Sale
	if err := conn.Preload("Lines").First(&stored, "id = ?", sale.ID).Error; err != nil {
		t.Fatalf("reload sale: %v", err)
	}
	if stored.TotalCents != 25000 || len(stored.Lines) != 2 {
		t.Fatalf("unexpected persisted sale: %+v", stored)
	}

	var reloaded models.Product
	if err := conn.First(&reloaded, "id = ?", coffee.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockQuantity != 8 {
		t.Fatalf("expected stock 8 after sale, got %d", reloaded.StockQuantity)
	}
}

func TestCheckoutUnknownProductRollsBack(t *testing.T) {
	svc, conn := newTestService(t)
	coffee := seedProduct(t, conn, "KOPI-001", 10000, 10)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		PaidCents: 100000,
		Lines: []CheckoutLineInput{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: uuid.New(), Quantity: 1},
		},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	var saleCount int64
	conn.Model(&models.Sale{}).Count(&saleCount)
	if saleCount != 0 {
		t.Fatal("expected no sale persisted")
	}

	var reloaded models.Product
	if err := conn.First(&reloaded, "id = ?", coffee.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockQuantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", reloaded.StockQuantity)
	}
}

func TestCheckoutLastUnitRace(t *testing.T) {
	svc, conn := newTestService(t)
	product := seedProduct(t, conn, "KOPI-001", 10000, 1)
	cashier := uuid.New()

	start := make(chan struct{})
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Checkout(context.Background(), CheckoutInput{
				CashierID: cashier,
				PaidCents: 10000,
				Lines:     []CheckoutLineInput{{ProductID: product.ID, Quantity: 1}},
			})
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var successes, failures int
	for err := range errs {
		if err == nil {
			successes++
		} else {
			failures++
		}
	}
	if successes != 1 || failures != 1 {
		t.Fatalf("expected exactly one winning checkout, got %d successes and %d failures", successes, failures)
	}

	var stored models.Product
	if err := conn.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if stored.StockQuantity != 0 {
		t.Fatalf("expected stock floored at zero, got %d", stored.StockQuantity)
	}

	var saleCount int64
	if err := conn.Model(&models.Sale{}).Count(&saleCount).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if saleCount != 1 {
		t.Fatalf("expected exactly one sale recorded, got %d", saleCount)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	svc, conn := newTestService(t)
	coffee := seedProduct(t, conn, "KOPI-001", 10000, 1)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		PaidCents: 100000,
		Lines:     []CheckoutLineInput{{ProductID: coffee.ID, Quantity: 3}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	var reloaded models.Product
	if err := conn.First(&reloaded, "id = ?", coffee.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockQuantity != 1 {
		t.Fatalf("stock must be untouched, got %d", reloaded.StockQuantity)
	}
}

func TestCheckoutInsufficientPayment(t *testing.T) {
	svc, conn := newTestService(t)
	coffee := seedProduct(t, conn, "KOPI-001", 10000, 10)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		PaidCents: 15000,
		Lines:     []CheckoutLineInput{{ProductID: coffee.ID, Quantity: 2}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	var saleCount int64
	conn.Model(&models.Sale{}).Count(&saleCount)
	if saleCount != 0 {
		t.Fatal("expected no sale persisted")
	}

	// Stock decremented inside the transaction must come back on rollback.
	var reloaded models.Product
	if err := conn.First(&reloaded, "id = ?", coffee.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockQuantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", reloaded.StockQuantity)
	}
}

func TestCheckoutValidatesLines(t *testing.T) {
	svc, conn := newTestService(t)
	coffee := seedProduct(t, conn, "KOPI-001", 10000, 10)

	cases := []struct {
		name  string
		input CheckoutInput
	}{
		{"empty cart", CheckoutInput{CashierID: uuid.New(), PaidCents: 1000}},
		{"zero quantity", CheckoutInput{
			CashierID: uuid.New(),
			PaidCents: 1000,
			Lines:     []CheckoutLineInput{{ProductID: coffee.ID, Quantity: 0}},
		}},
		{"negative paid", CheckoutInput{
			CashierID: uuid.New(),
			PaidCents: -1,
			Lines:     []CheckoutLineInput{{ProductID: coffee.ID, Quantity: 1}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCheckoutMergesDuplicateLines(t *testing.T) {
	svc, conn := newTestService(t)
	coffee := seedProduct(t, conn, "KOPI-001", 10000, 10)

	sale, err := svc.Checkout(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		PaidCents: 50000,
		Lines: []CheckoutLineInput{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: coffee.ID, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(sale.Lines) != 1 {
		t.Fatalf("expected merged single line, got %d", len(sale.Lines))
	}
	if sale.Lines[0].Quantity != 5 || sale.TotalCents != 50000 {
		t.Fatalf("unexpected merged line: %+v total=%d", sale.Lines[0], sale.TotalCents)
	}
}

func TestSaleLinePriceSnapshotIsImmutable(t *testing.T) {
	svc, conn := newTestService(t)
	coffee := seedProduct(t, conn, "KOPI-001", 10000, 10)

	sale, err := svc.Checkout(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		PaidCents: 10000,
		Lines:     []CheckoutLineInput{{ProductID: coffee.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// Repricing the catalog must not rewrite history.
	if err := conn.Model(&models.Product{}).
		Where("id = ?", coffee.ID).
		UpdateColumn("price_cents", 99999).Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}

	reloaded, err := svc.GetSale(context.Background(), sale.ID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if reloaded.Lines[0].UnitPriceCents != 10000 {
		t.Fatalf("price snapshot changed: %d", reloaded.Lines[0].UnitPriceCents)
	}
	if reloaded.TotalCents != 10000 {
		t.Fatalf("sale total changed: %d", reloaded.TotalCents)
	}
}

func TestGetSaleNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetSale(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListSales(t *testing.T) {
	svc, conn := newTestService(t)
	coffee := seedProduct(t, conn, "KOPI-001", 10000, 100)

	for i := 0; i < 3; i++ {
		if _, err := svc.Checkout(context.Background(), CheckoutInput{
			CashierID: uuid.New(),
			PaidCents: 10000,
			Lines:     []CheckoutLineInput{{ProductID: coffee.ID, Quantity: 1}},
		}); err != nil {
			t.Fatalf("checkout %d: %v", i, err)
		}
	}

	page, err := svc.ListSales(context.Background(), ListSalesInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalItems != 3 || len(page.Items) != 3 {
		t.Fatalf("expected 3 sales, got %+v", page)
	}
	for _, sale := range page.Items {
		if len(sale.Lines) != 1 {
			t.Fatalf("expected lines preloaded, got %+v", sale)
		}
	}
}
