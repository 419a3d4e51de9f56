package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/infra/observability"
	"github.com/dmelton/splitbook/internal/service"
)

var tracer = otel.Tracer("handler")

// Services bundles the application services the router dispatches to.
type Services struct {
	Auth         *service.AuthService
	Accounts     *service.AccountService
	Categories   *service.CategoryService
	Transactions *service.TransactionService
	Reports      *service.ReportService
	Imports      *service.ImportService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(metricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Accounts, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})

		// Everything else requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Accounts
			r.Get("/accounts", listAccountsHandler(svcs.Accounts, logger))
			r.Post("/accounts", createAccountHandler(svcs.Accounts, logger))
			r.Get("/accounts/{accountId}", getAccountHandler(svcs.Accounts, logger))
			r.Put("/accounts/{accountId}", updateAccountHandler(svcs.Accounts, logger))
			r.Delete("/accounts/{accountId}", deleteAccountHandler(svcs.Accounts, logger))

			// Categories
			r.Get("/categories", listCategoriesHandler(svcs.Categories, logger))
			r.Get("/categories/tree", categoryTreeHandler(svcs.Categories, logger))
			r.Post("/categories", createCategoryHandler(svcs.Categories, logger))
			r.Put("/categories/{categoryId}", updateCategoryHandler(svcs.Categories, logger))
			r.Delete("/categories/{categoryId}", deleteCategoryHandler(svcs.Categories, logger))

			// Transactions
			r.Get("/transactions", listTransactionsHandler(svcs.Transactions, logger))
			r.Post("/transactions", createTransactionHandler(svcs.Transactions, logger))
			r.Get("/transactions/{transactionId}", getTransactionHandler(svcs.Transactions, logger))
			r.Patch("/transactions/{transactionId}", updateTransactionHandler(svcs.Transactions, logger))
			r.Delete("/transactions/{transactionId}", deleteTransactionHandler(svcs.Transactions, logger))

			// Reports
			r.Get("/reports/summary", summaryReportHandler(svcs.Reports, logger))

			// CSV import
			r.Post("/import/csv", importCSVHandler(svcs.Imports, logger))
		})
	})

	return r
}

// metricsMiddleware records per-request duration and status counts.
func metricsMiddleware(m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			m.RecordRequestDuration(r.Method+" "+r.URL.Path, time.Since(start))
			m.IncrRequest(strconv.Itoa(ww.Status()))
		})
	}
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(accounts *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status := "healthy"
		start := time.Now()
		if _, err := accounts.List(ctx, "health-check"); err != nil {
			status = "degraded"
			logger.Warn("healthz: record store probe failed", zap.Error(err))
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":     status,
			"store":      status,
			"latency_ms": time.Since(start).Milliseconds(),
			"checked_at": time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
