package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/marcovaldez/tiendapos-backend/api/routes"
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
	"github.com/marcovaldez/tiendapos-backend/pkg/auth/session"
	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/db"
	"github.com/marcovaldez/tiendapos-backend/pkg/env"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
	"github.com/marcovaldez/tiendapos-backend/pkg/migrate"
	"github.com/marcovaldez/tiendapos-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	sessionRepo, err := identity.NewSessionRepository(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session repository", err)
		os.Exit(1)
	}

	resolver, err := identity.NewResolver(cfg.JWT, sessionRepo, sessionManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity resolver", err)
		os.Exit(1)
	}
	identityStore := identity.NewStore(sessionRepo, sessionManager)

	gormDB := dbClient.DB()
	auditRepo := auditsvc.NewRepository(gormDB)
	emitter, err := auditsvc.NewEmitter(auditRepo, cfg.Audit, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit emitter", err)
		os.Exit(1)
	}

	businessRepo := businesssvc.NewRepository(gormDB)
	branchRepo := businesssvc.NewBranchRepository(gormDB)
	productRepo := productsvc.NewRepository(gormDB)
	stockRepo := inventorysvc.NewStockRepository(gormDB)
	employeeRepo := employeesvc.NewRepository(gormDB)
	terminalRepo := terminalsvc.NewRepository(gormDB)
	saleRepo := salesvc.NewRepository(gormDB)
	transferRepo := transfersvc.NewRepository(gormDB)
	financeRepo := financesvc.NewRepository(gormDB)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		OwnerRepo:      authsvc.NewOwnerRepository(gormDB),
		BusinessLookup: businessRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	businessService, err := businesssvc.NewService(businessRepo, branchRepo, emitter, cfg.Inventory)
	if err != nil {
		logg.Error(context.Background(), "failed to create business service", err)
		os.Exit(1)
	}

	productService, err := productsvc.NewService(dbClient, productRepo, stockRepo, businessRepo, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	inventoryService, err := inventorysvc.NewService(stockRepo, businessRepo, productRepo, branchRepo, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	salesService, err := salesvc.NewService(dbClient, saleRepo, stockRepo, businessRepo, productRepo, branchRepo, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	transferService, err := transfersvc.NewService(dbClient, transferRepo, stockRepo, businessRepo, productRepo, branchRepo, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer service", err)
		os.Exit(1)
	}

	financeService, err := financesvc.NewService(dbClient, financeRepo, stockRepo, businessRepo, productRepo, branchRepo, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create finance service", err)
		os.Exit(1)
	}

	employeeService, err := employeesvc.NewService(employeeRepo, sessionRepo, businessRepo, emitter, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create employee service", err)
		os.Exit(1)
	}

	terminalService, err := terminalsvc.NewService(terminalRepo, sessionRepo, businessRepo, emitter, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create terminal service", err)
		os.Exit(1)
	}

	auditService, err := auditsvc.NewService(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(cfg, logg, gormDB, redisClient, resolver, identityStore, routes.Services{
		Auth:      authService,
		Business:  businessService,
		Products:  productService,
		Inventory: inventoryService,
		Sales:     salesService,
		Transfers: transferService,
		Finance:   financeService,
		Employees: employeeService,
		Terminals: terminalService,
		Audit:     auditService,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	id := env.Get("DYNO", "local")
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	// The emitter drains its queue once the context is cancelled, so
	// audit writes issued during shutdown still land.
	g.Go(func() error {
		return emitter.Run(gCtx)
	})

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
