package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kasirpos/kasirpos-backend/api/controllers"
	"github.com/kasirpos/kasirpos-backend/api/middleware"
	authsvc "github.com/kasirpos/kasirpos-backend/internal/auth"
	"github.com/kasirpos/kasirpos-backend/internal/importer"
	"github.com/kasirpos/kasirpos-backend/internal/products"
	"github.com/kasirpos/kasirpos-backend/internal/reports"
	"github.com/kasirpos/kasirpos-backend/internal/sales"
	"github.com/kasirpos/kasirpos-backend/pkg/auth/session"
	"github.com/kasirpos/kasirpos-backend/pkg/config"
	"github.com/kasirpos/kasirpos-backend/pkg/db"
	"github.com/kasirpos/kasirpos-backend/pkg/logger"
	"github.com/kasirpos/kasirpos-backend/pkg/metrics"
	"github.com/kasirpos/kasirpos-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	authService authsvc.Service,
	productService products.Service,
	salesService sales.Service,
	importerService *importer.Service,
	reportsService *reports.Service,
	promRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(promRegistry)
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(productService, logg))
			r.Post("/", controllers.ProductsCreate(productService, logg))
			r.Post("/import", controllers.ProductsImportCSV(importerService, cfg.Import, logg))
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", controllers.ProductsGet(productService, logg))
				r.Put("/", controllers.ProductsUpdate(productService, logg))
				r.Delete("/", controllers.ProductsDelete(productService, logg))
			})
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", controllers.TransactionsCreate(salesService, logg))
			r.Get("/", controllers.TransactionsList(salesService, logg))
			r.Get("/{saleID}", controllers.TransactionsGet(salesService, logg))
		})

		r.Get("/cashier/products", controllers.CashierProducts(productService, logg))
		r.Get("/dashboard", controllers.Dashboard(reportsService, logg))
	})

	return r
}
