package controllers

import (
	"context"
	"net/http"

	"github.com/kasirpos/kasirpos-backend/api/responses"
	"github.com/kasirpos/kasirpos-backend/internal/reports"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
	"github.com/kasirpos/kasirpos-backend/pkg/logger"
)

type dashboardProvider interface {
	GetDashboard(ctx context.Context) (*reports.Dashboard, error)
}

// Dashboard serves the landing screen aggregates.
func Dashboard(svc dashboardProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		dash, err := svc.GetDashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dash)
	}
}
