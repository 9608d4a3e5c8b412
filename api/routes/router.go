package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/api/controllers"
	"github.com/marcovaldez/tiendapos-backend/api/middleware"
	"github.com/marcovaldez/tiendapos-backend/internal/accesscontrol"
	auditsvc "github.com/marcovaldez/tiendapos-backend/internal/audit"
	authsvc "github.com/marcovaldez/tiendapos-backend/internal/auth"
	businesssvc "github.com/marcovaldez/tiendapos-backend/internal/business"
	employeesvc "github.com/marcovaldez/tiendapos-backend/internal/employees"
	financesvc "github.com/marcovaldez/tiendapos-backend/internal/finance"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	inventorysvc "github.com/marcovaldez/tiendapos-backend/internal/inventory"
	productsvc "github.com/marcovaldez/tiendapos-backend/internal/products"
	salesvc "github.com/marcovaldez/tiendapos-backend/internal/sales"
	terminalsvc "github.com/marcovaldez/tiendapos-backend/internal/terminals"
	transfersvc "github.com/marcovaldez/tiendapos-backend/internal/transfers"
	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
	"github.com/marcovaldez/tiendapos-backend/pkg/metrics"
	"github.com/marcovaldez/tiendapos-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth      authsvc.Service
	Business  businesssvc.Service
	Products  productsvc.Service
	Inventory inventorysvc.Service
	Sales     salesvc.Service
	Transfers transfersvc.Service
	Finance   financesvc.Service
	Employees employeesvc.Service
	Terminals terminalsvc.Service
	Audit     auditsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	db *gorm.DB,
	cache *redis.Client,
	resolver *identity.Resolver,
	identityStore *identity.Store,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentifierLimit,
	)

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(db, cache, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Every request gets an actor; bad credentials degrade to none
		// and the gates below decide what that may reach.
		r.Use(middleware.Identity(resolver, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, cache, logg)).
				Post("/register", controllers.OwnerRegister(svcs.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, cache, logg)).
				Post("/login", controllers.OwnerLogin(svcs.Auth, logg))
			r.Post("/refresh", controllers.OwnerRefresh(svcs.Auth, logg))
			r.Post("/logout", controllers.OwnerLogout(svcs.Auth, logg))
			r.Post("/clear", controllers.SessionClear(identityStore, logg))
		})

		r.Route("/employees", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, cache, logg)).
				Post("/login", controllers.EmployeeLogin(svcs.Employees, logg))
			r.Post("/logout", controllers.EmployeeLogout(svcs.Employees, logg))
			r.Post("/pin", controllers.VerifyPIN(svcs.Employees, logg))
			r.Post("/shift/end", controllers.EndShift(svcs.Employees, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAction(accesscontrol.ActionManagePersonnel, logg))
				r.Post("/", controllers.CreateEmployee(svcs.Employees, logg))
				r.Get("/", controllers.ListEmployees(svcs.Employees, logg))
				r.Patch("/{employeeID}", controllers.UpdateEmployee(svcs.Employees, logg))
				r.Delete("/{employeeID}", controllers.DeactivateEmployee(svcs.Employees, logg))
			})
		})

		r.Route("/terminals", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, cache, logg)).
				Post("/login", controllers.TerminalLogin(svcs.Terminals, logg))
			r.Post("/logout", controllers.TerminalLogout(svcs.Terminals, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAction(accesscontrol.ActionManageTerminals, logg))
				r.Post("/", controllers.RegisterTerminal(svcs.Terminals, logg))
				r.Get("/", controllers.ListTerminals(svcs.Terminals, logg))
				r.Post("/{terminalID}/rotate-code", controllers.RotateTerminalCode(svcs.Terminals, logg))
				r.Patch("/{terminalID}", controllers.UpdateTerminal(svcs.Terminals, logg))
			})
		})

		r.Route("/business", func(r chi.Router) {
			r.Post("/", controllers.OnboardBusiness(svcs.Business, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuthenticated(logg))
				r.Get("/", controllers.GetBusiness(svcs.Business, logg))
				r.Patch("/", controllers.UpdateBusiness(svcs.Business, logg))
				r.Put("/inventory-mode", controllers.ChangeInventoryMode(svcs.Business, logg))
			})
		})

		r.Route("/branches", func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated(logg))
			r.Get("/", controllers.ListBranches(svcs.Business, logg))
			r.Post("/", controllers.CreateBranch(svcs.Business, logg))
			r.Put("/{branchID}", controllers.UpdateBranch(svcs.Business, logg))
			r.Delete("/{branchID}", controllers.DeleteBranch(svcs.Business, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated(logg))
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(svcs.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAction(accesscontrol.ActionManageProducts, logg))
				r.Post("/", controllers.CreateProduct(svcs.Products, logg))
				r.Patch("/{productID}", controllers.UpdateProduct(svcs.Products, logg))
				r.Delete("/{productID}", controllers.DeleteProduct(svcs.Products, logg))
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated(logg))
			r.Post("/adjust", controllers.AdjustStock(svcs.Inventory, logg))
			r.Post("/receive", controllers.ReceiveStock(svcs.Inventory, logg))
			r.Get("/levels/{productID}", controllers.GetStockLevel(svcs.Inventory, logg))
			r.Get("/low-stock", controllers.ListLowStock(svcs.Inventory, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated(logg))
			r.Post("/", controllers.ProcessSale(svcs.Sales, logg))
			r.Get("/", controllers.ListSales(svcs.Sales, logg))
			r.Get("/{saleID}", controllers.GetSale(svcs.Sales, logg))
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated(logg))
			r.Post("/", controllers.ExecuteTransfer(svcs.Transfers, logg))
			r.Get("/", controllers.ListTransfers(svcs.Transfers, logg))
			r.Get("/{transferID}", controllers.GetTransfer(svcs.Transfers, logg))
		})

		r.Route("/finance", func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated(logg))
			r.Post("/suppliers", controllers.CreateSupplier(svcs.Finance, logg))
			r.Get("/suppliers", controllers.ListSuppliers(svcs.Finance, logg))
			r.Post("/purchases", controllers.RecordPurchase(svcs.Finance, logg))
			r.Get("/purchases", controllers.ListPurchases(svcs.Finance, logg))
			r.Post("/expenses", controllers.RecordExpense(svcs.Finance, logg))
			r.Get("/expenses", controllers.ListExpenses(svcs.Finance, logg))
		})

		r.Route("/audit", func(r chi.Router) {
			r.Use(middleware.RequireAction(accesscontrol.ActionViewAudit, logg))
			r.Get("/", controllers.ListAuditEvents(svcs.Audit, logg))
		})
	})

	return r
}
