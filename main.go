package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	accountsapp "aeroledger/internal/accounts/application"
	accountspg "aeroledger/internal/accounts/infrastructure/postgres"
	accountshttp "aeroledger/internal/accounts/interfaces/http"
	"aeroledger/internal/audit"
	"aeroledger/internal/auth"
	expensespg "aeroledger/internal/expenses/infrastructure/postgres"
	expenseshttp "aeroledger/internal/expenses/interfaces/http"
	fleetpg "aeroledger/internal/fleet/infrastructure/postgres"
	fleethttp "aeroledger/internal/fleet/interfaces/http"
	invoicespg "aeroledger/internal/invoices/infrastructure/postgres"
	invoiceshttp "aeroledger/internal/invoices/interfaces/http"
	"aeroledger/internal/observability/metrics"
	reportapp "aeroledger/internal/report/application"
	reporthttp "aeroledger/internal/report/interfaces"
	"aeroledger/internal/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	if err := storage.RunMigrations(db); err != nil {
		logger.Fatalf("migrations error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	userRepo, err := accountspg.NewUserRepository(db)
	if err != nil {
		logger.Fatalf("user repository error: %v", err)
	}
	accountsService, err := accountsapp.NewService(userRepo, []byte(cfg.JWTSecret), cfg.SessionTTL)
	if err != nil {
		logger.Fatalf("accounts service error: %v", err)
	}
	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	if err := accountsService.Bootstrap(bootstrapCtx, cfg.BootstrapEmail, cfg.BootstrapPassword); err != nil {
		cancelBootstrap()
		logger.Fatalf("bootstrap user error: %v", err)
	}
	cancelBootstrap()
	authHandler, err := accountshttp.NewAuthHandler(accountsService, auditRepo, logger, cfg.SecureCookies)
	if err != nil {
		logger.Fatalf("auth handler error: %v", err)
	}

	flightRepo, err := fleetpg.NewFlightRepository(db)
	if err != nil {
		logger.Fatalf("flight repository error: %v", err)
	}
	flightHandler, err := fleethttp.NewFlightHandler(flightRepo, auditRepo, logger)
	if err != nil {
		logger.Fatalf("flight handler error: %v", err)
	}

	invoiceRepo, err := invoicespg.NewInvoiceRepository(db)
	if err != nil {
		logger.Fatalf("invoice repository error: %v", err)
	}
	invoiceHandler, err := invoiceshttp.NewInvoiceHandler(invoiceRepo, auditRepo, logger)
	if err != nil {
		logger.Fatalf("invoice handler error: %v", err)
	}

	expenseRepo, err := expensespg.NewExpenseRepository(db)
	if err != nil {
		logger.Fatalf("expense repository error: %v", err)
	}
	expenseHandler, err := expenseshttp.NewExpenseHandler(expenseRepo, auditRepo, logger)
	if err != nil {
		logger.Fatalf("expense handler error: %v", err)
	}

	reportCfg, err := reportapp.LoadConfig()
	if err != nil {
		logger.Fatalf("report config error: %v", err)
	}
	reportCutoff, err := reportCfg.CutoffTime()
	if err != nil {
		logger.Fatalf("report cutoff error: %v", err)
	}
	reportService, err := reportapp.NewService(expenseRepo, systemClock{}, reportCutoff)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}
	reportHandler := reporthttp.NewHandler(reportService, auditRepo, logger, reportCfg.DefaultYearFilter)

	auditHandler := audit.NewHandler(auditRepo)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/auth/login", authHandler)
	mux.Handle("/api/v1/auth/logout", authHandler)
	mux.Handle("/api/v1/auth/me", authHandler)
	mux.Handle("/api/v1/flights", flightHandler)
	mux.Handle("/api/v1/flights/", flightHandler)
	mux.Handle("/api/v1/invoices", invoiceHandler)
	mux.Handle("/api/v1/invoices/", invoiceHandler)
	mux.Handle("/api/v1/invoice-types", invoiceHandler)
	mux.Handle("/api/v1/expenses", expenseHandler)
	mux.Handle("/api/v1/expenses/", expenseHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	mux.Handle("/api/v1/audit", auditHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL       string
	HTTPAddr          string
	JWTSecret         string
	SessionTTL        time.Duration
	SecureCookies     bool
	BootstrapEmail    string
	BootstrapPassword string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		SessionTTL:        getenvDuration("AUTH_SESSION_TTL", 12*time.Hour),
		SecureCookies:     getenvBoolDefault("AUTH_SECURE_COOKIES", false),
		BootstrapEmail:    getenvDefault("AUTH_BOOTSTRAP_EMAIL", ""),
		BootstrapPassword: getenvDefault("AUTH_BOOTSTRAP_PASSWORD", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		elapsed := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, strconv.Itoa(resp.status), elapsed)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, elapsed)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
