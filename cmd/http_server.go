package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/approval"
	approvalPostgres "github.com/approvalengine/expense-service/internal/approval/postgres"
	"github.com/approvalengine/expense-service/internal/auth"
	authPostgres "github.com/approvalengine/expense-service/internal/auth/postgres"
	"github.com/approvalengine/expense-service/internal/category"
	categoryPostgres "github.com/approvalengine/expense-service/internal/category/postgres"
	"github.com/approvalengine/expense-service/internal/company"
	companyPostgres "github.com/approvalengine/expense-service/internal/company/postgres"
	"github.com/approvalengine/expense-service/internal/core/events"
	"github.com/approvalengine/expense-service/internal/currency"
	"github.com/approvalengine/expense-service/internal/expense"
	expensePostgres "github.com/approvalengine/expense-service/internal/expense/postgres"
	"github.com/approvalengine/expense-service/internal/payment"
	paymentPostgres "github.com/approvalengine/expense-service/internal/payment/postgres"
	"github.com/approvalengine/expense-service/internal/transport"
	"github.com/approvalengine/expense-service/internal/transport/rest"
	"github.com/approvalengine/expense-service/internal/user"
	userPostgres "github.com/approvalengine/expense-service/internal/user/postgres"
	"github.com/approvalengine/expense-service/pkg/logger"
	"github.com/approvalengine/expense-service/pkg/receiptstore"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger

	AuthHandler     *auth.Handler
	RBAC            *auth.RBACAuthorization
	UserHandler     *user.Handler
	CompanyHandler  *company.Handler
	ExpenseHandler  *expense.Handler
	ApprovalHandler *approval.Handler
	CategoryHandler *category.Handler
	PaymentHandler  *payment.Handler
	WebhookHandler  *payment.WebhookHandler
	EventBus        *events.EventBus
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	deps.Router.Use(chiMiddleware.RequestID)
	deps.Router.Use(chiMiddleware.Logger)
	deps.Router.Use(chiMiddleware.Recoverer)
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.AuthHandler, deps.RBAC, deps.UserHandler, deps.CompanyHandler, deps.ExpenseHandler, deps.ApprovalHandler, deps.CategoryHandler, deps.PaymentHandler, deps.WebhookHandler, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGormDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm connection: %w", err)
	}

	lg := logger.LoggerWrapper()

	userRepo := userPostgres.NewRepository(gormDB)
	companyRepo := companyPostgres.NewRepository(gormDB)
	authRepo := authPostgres.NewRepository(gormDB)
	expenseRepo := expensePostgres.NewRepository(gormDB, db)
	slotRepo := approvalPostgres.NewSlotRepo(gormDB)
	approverRepo := approvalPostgres.NewApproverRepo(gormDB)
	ruleRepo := approvalPostgres.NewRuleRepo(gormDB)
	queryRepo := approvalPostgres.NewQueryRepo(db)

	userSvc := user.NewService(userRepo)
	companySvc := company.NewService(companyRepo)

	rateCache := currency.NewCache(config.ExchangeRate.CacheTTL)
	rateOracle := currency.NewOracle(config.ExchangeRate.OracleURL, config.ExchangeRate.Timeout)
	normalizer := currency.NewNormalizer(rateCache, rateOracle)

	approvalSvc := approval.NewService(gormDB, slotRepo, approverRepo, ruleRepo, queryRepo, userRepo, companySvc, normalizer)

	receiptStore, err := receiptstore.NewLocal(config.Upload.Dir, "/uploads")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize receipt storage: %w", err)
	}
	approvalSvc.SetReceiptCleaner(receiptStore)

	expenseSvc := expense.NewService(expenseRepo, approvalSvc, approvalSvc)
	expenseSvc.SetManagerLookup(userRepo.ManagerOf)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.SessionSecret, config.Security.JWTPrivateKey)
	authSvc := auth.NewService(authRepo, tokenGen)
	rbac := auth.NewRBACAuthorization(lg)

	categoryRepo := categoryPostgres.NewCategoryRepository(gormDB)
	categorySvc := category.NewService(categoryRepo, lg)
	baseHandler := transport.NewBaseHandler(lg)

	eventBus := events.NewEventBus(lg)
	approvalSvc.SetEventBus(eventBus)

	paymentRepo := paymentPostgres.NewPaymentRepository(gormDB)
	paymentSvc := payment.NewPaymentService(config.Payment.MockAPIURL, lg, paymentRepo)
	paymentProcessor := payment.NewExpensePaymentProcessor(paymentSvc, lg)
	paymentEventHandler := payment.NewEventHandler(paymentProcessor, lg)
	paymentEventHandler.RegisterEventHandlers(eventBus)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),

		AuthHandler:     auth.NewHandler(authSvc),
		RBAC:            rbac,
		UserHandler:     user.NewHandler(userSvc),
		CompanyHandler:  company.NewHandler(companySvc),
		ExpenseHandler:  expense.NewHandler(expenseSvc, receiptStore, config.Upload),
		ApprovalHandler: approval.NewHandler(approvalSvc),
		CategoryHandler: category.NewHandler(baseHandler, categorySvc),
		PaymentHandler:  payment.NewHandler(baseHandler, paymentSvc, lg),
		WebhookHandler:  payment.NewWebhookHandler(baseHandler, paymentSvc, eventBus, lg),
		EventBus:        eventBus,
	}, nil
}

// initDB opens the sqlx connection backing the Query Surface's parameterized
// reads.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open traced db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqlx.NewDb(dbConn.DB, driver), dbConn.Ping()
}

// initGormDB opens the gorm connection backing the Persistence Gateway's
// transactional writes (spec §4.D state machine, §4.G admin config).
func initGormDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Source), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}
