package controllers

import (
	"net/http"

	"github.com/kasirpos/kasirpos-backend/api/responses"
	"github.com/kasirpos/kasirpos-backend/api/validators"
	productsvc "github.com/kasirpos/kasirpos-backend/internal/products"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
	"github.com/kasirpos/kasirpos-backend/pkg/logger"
	"github.com/kasirpos/kasirpos-backend/pkg/pagination"
)

// CashierProducts serves the register screen: the latest catalog additions,
// or a search result when q is present.
func CashierProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		search := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen)
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if search != "" {
			result, err := svc.ListProducts(r.Context(), productsvc.ListProductsInput{
				Search: search,
				Page:   pagination.Params{Page: 1, PageSize: limit},
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, map[string]any{"products": result.Items})
			return
		}

		recent, err := svc.RecentProducts(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": recent})
	}
}
