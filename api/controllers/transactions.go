package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kasirpos/kasirpos-backend/api/middleware"
	"github.com/kasirpos/kasirpos-backend/api/responses"
	"github.com/kasirpos/kasirpos-backend/api/validators"
	salesvc "github.com/kasirpos/kasirpos-backend/internal/sales"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
	"github.com/kasirpos/kasirpos-backend/pkg/logger"
)

type transactionItemRequest struct {
	ProductID uuid.UUID `json:"id" validate:"required"`
	Quantity  int       `json:"qty" validate:"required,gt=0"`
}

// createTransactionRequest is the checkout wire shape
// `{items: [{id, qty}], paid}`; paid is an integer cent amount.
type createTransactionRequest struct {
	Items     []transactionItemRequest `json:"items" validate:"required,min=1,dive"`
	PaidCents int64                    `json:"paid" validate:"gte=0"`
}

// TransactionsCreate records a sale for the authenticated cashier.
func TransactionsCreate(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		cashierID, err := cashierFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createTransactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]salesvc.CheckoutLineInput, 0, len(body.Items))
		for _, item := range body.Items {
			lines = append(lines, salesvc.CheckoutLineInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		sale, err := svc.Checkout(r.Context(), salesvc.CheckoutInput{
			CashierID: cashierID,
			Lines:     lines,
			PaidCents: body.PaidCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// TransactionsList serves paginated sale history.
func TransactionsList(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListSales(r.Context(), salesvc.ListSalesInput{Page: params})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// TransactionsGet loads one sale with its lines.
func TransactionsGet(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		saleID, err := pathUUID(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.GetSale(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

func cashierFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session identity")
	}
	return id, nil
}
