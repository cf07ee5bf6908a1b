package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rafidahmed/tinbari-backend/api/controllers"
	"github.com/rafidahmed/tinbari-backend/api/middleware"
	"github.com/rafidahmed/tinbari-backend/internal/catalog"
	"github.com/rafidahmed/tinbari-backend/internal/expenses"
	"github.com/rafidahmed/tinbari-backend/internal/payroll"
	"github.com/rafidahmed/tinbari-backend/internal/reports"
	"github.com/rafidahmed/tinbari-backend/internal/sales"
	"github.com/rafidahmed/tinbari-backend/internal/stock"
	"github.com/rafidahmed/tinbari-backend/internal/users"
	"github.com/rafidahmed/tinbari-backend/pkg/config"
	"github.com/rafidahmed/tinbari-backend/pkg/db"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
	"github.com/rafidahmed/tinbari-backend/pkg/metrics"
	"github.com/rafidahmed/tinbari-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Users    users.Service
	Catalog  catalog.Service
	Stock    stock.Service
	Sales    sales.Service
	Reports  reports.Service
	Expenses expenses.Service
	Payroll  payroll.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cacheP redis.Pinger,
	registry *prometheus.Registry,
	opMetrics *metrics.OperationMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(opMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Users, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Route("/groups", func(r chi.Router) {
				r.Get("/", controllers.ListProductGroups(svcs.Catalog, logg))
				r.Post("/", controllers.CreateProductGroup(svcs.Catalog, logg))
				r.Route("/{groupId}", func(r chi.Router) {
					r.Get("/", controllers.GetProductGroup(svcs.Catalog, logg))
					r.Patch("/", controllers.UpdateProductGroup(svcs.Catalog, logg))
					r.Delete("/", controllers.DeleteProductGroup(svcs.Catalog, logg))
					r.Post("/stock-in", controllers.StockIn(svcs.Stock, logg))
					r.Route("/variants/{variantId}", func(r chi.Router) {
						r.Put("/price", controllers.SetVariantSellingPrice(svcs.Catalog, logg))
						r.Delete("/", controllers.DeleteVariant(svcs.Catalog, logg))
					})
				})
			})
			r.Get("/stock-logs", controllers.StockLogs(svcs.Stock, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(svcs.Sales, logg))
			r.Post("/", controllers.Checkout(svcs.Sales, logg))
			r.Get("/dues", controllers.ListDueSales(svcs.Sales, logg))
			r.Post("/opening-dues", controllers.CreateOpeningDue(svcs.Sales, logg))
			r.Route("/{saleId}", func(r chi.Router) {
				r.Get("/", controllers.GetSale(svcs.Sales, logg))
				r.Put("/", controllers.EditSale(svcs.Sales, logg))
				r.Delete("/", controllers.DeleteSale(svcs.Sales, logg))
				r.Post("/payments", controllers.AddPayment(svcs.Sales, logg))
				r.Post("/items/{itemId}/return", controllers.ReturnItem(svcs.Sales, logg))
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", controllers.SalesSummaryReport(svcs.Reports, logg))
			r.Get("/stock-valuation", controllers.StockValuationReport(svcs.Reports, logg))
			r.Get("/top-dues", controllers.TopDuesReport(svcs.Reports, logg))
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Get("/attendance", controllers.DailyAttendance(svcs.Payroll, logg))
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", controllers.ListEmployees(svcs.Payroll, logg))
				r.Post("/", controllers.AddEmployee(svcs.Payroll, logg))
				r.Route("/{employeeId}", func(r chi.Router) {
					r.Delete("/", controllers.DeleteEmployee(svcs.Payroll, logg))
					r.Get("/ledger", controllers.EmployeeLedger(svcs.Payroll, logg))
					r.Post("/payments", controllers.PayEmployee(svcs.Payroll, logg))
					r.Put("/attendance", controllers.MarkAttendance(svcs.Payroll, logg))
					r.Get("/attendance", controllers.MonthlyAttendance(svcs.Payroll, logg))
				})
			})
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", controllers.ListExpenses(svcs.Expenses, logg))
			r.Post("/", controllers.AddExpense(svcs.Expenses, logg))
			r.Delete("/{expenseId}", controllers.DeleteExpense(svcs.Expenses, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.GetStoreSettings(svcs.Catalog, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Put("/", controllers.UpdateStoreSettings(svcs.Catalog, logg))
		})
	})

	return r
}
