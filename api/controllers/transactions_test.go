package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kasirpos/kasirpos-backend/api/middleware"
	salesvc "github.com/kasirpos/kasirpos-backend/internal/sales"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
	"github.com/kasirpos/kasirpos-backend/pkg/logger"
	"github.com/kasirpos/kasirpos-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubSalesService struct {
	checkoutInput *salesvc.CheckoutInput
	checkoutOut   *salesvc.SaleDTO
	checkoutErr   error
	getOut        *salesvc.SaleDTO
	getErr        error
	listOut       *pagination.Page[salesvc.SaleDTO]
}

func (s *stubSalesService) Checkout(_ context.Context, input salesvc.CheckoutInput) (*salesvc.SaleDTO, error) {
	s.checkoutInput = &input
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return s.checkoutOut, nil
}

func (s *stubSalesService) GetSale(context.Context, uuid.UUID) (*salesvc.SaleDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getOut, nil
}

func (s *stubSalesService) ListSales(context.Context, salesvc.ListSalesInput) (*pagination.Page[salesvc.SaleDTO], error) {
	return s.listOut, nil
}

func TestTransactionsCreate(t *testing.T) {
	logg := testLogger()
	cashierID := uuid.New()
	productID := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubSalesService{
			checkoutOut: &salesvc.SaleDTO{
				ID:          uuid.New(),
				CashierID:   cashierID,
				TotalCents:  25000,
				PaidCents:   30000,
				ChangeCents: 5000,
			},
		}
		body := `{"items":[{"id":"` + productID.String() + `","qty":2}],"paid":30000}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), cashierID.String()))
		rec := httptest.NewRecorder()
		TransactionsCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.checkoutInput == nil {
			t.Fatal("expected checkout to be invoked")
		}
		if stub.checkoutInput.CashierID != cashierID {
			t.Fatalf("expected cashier from context, got %s", stub.checkoutInput.CashierID)
		}
		if len(stub.checkoutInput.Lines) != 1 || stub.checkoutInput.Lines[0].Quantity != 2 {
			t.Fatalf("unexpected lines: %+v", stub.checkoutInput.Lines)
		}

		var envelope struct {
			Data salesvc.SaleDTO `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.ChangeCents != 5000 {
			t.Fatalf("expected change in payload, got %+v", envelope.Data)
		}
	})

	t.Run("missing cashier", func(t *testing.T) {
		body := `{"items":[{"id":"` + productID.String() + `","qty":1}],"paid":1000}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		TransactionsCreate(&stubSalesService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(`{"items":`))
		req = req.WithContext(middleware.WithUserID(req.Context(), cashierID.String()))
		rec := httptest.NewRecorder()
		TransactionsCreate(&stubSalesService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		body := `{"cart":[{"id":"` + productID.String() + `","qty":1}],"paid":1000}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), cashierID.String()))
		rec := httptest.NewRecorder()
		TransactionsCreate(&stubSalesService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("empty items", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(`{"items":[],"paid":1000}`))
		req = req.WithContext(middleware.WithUserID(req.Context(), cashierID.String()))
		rec := httptest.NewRecorder()
		TransactionsCreate(&stubSalesService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("insufficient stock surfaces 409", func(t *testing.T) {
		stub := &stubSalesService{checkoutErr: pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")}
		body := `{"items":[{"id":"` + productID.String() + `","qty":5}],"paid":100000}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), cashierID.String()))
		rec := httptest.NewRecorder()
		TransactionsCreate(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestTransactionsGet(t *testing.T) {
	logg := testLogger()
	saleID := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubSalesService{getOut: &salesvc.SaleDTO{ID: saleID, TotalCents: 1000}}
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("saleID", saleID.String())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/"+saleID.String(), nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		TransactionsGet(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("saleID", "not-a-uuid")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/not-a-uuid", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		TransactionsGet(&stubSalesService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		stub := &stubSalesService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")}
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("saleID", saleID.String())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/"+saleID.String(), nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		TransactionsGet(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionsList(t *testing.T) {
	logg := testLogger()
	page := pagination.NewPage([]salesvc.SaleDTO{{ID: uuid.New()}}, pagination.Params{}, 1)
	stub := &stubSalesService{listOut: &page}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?page=1&page_size=10", nil)
	rec := httptest.NewRecorder()
	TransactionsList(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/transactions?page=zero", nil)
	rec = httptest.NewRecorder()
	TransactionsList(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad page, got %d", rec.Code)
	}
}
