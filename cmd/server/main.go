package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/db"
	"github.com/diewo77/go-quotes/internal/handlers"
	"github.com/diewo77/go-quotes/internal/obs"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/session"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag   = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	importCatalogFlag = flag.String("import-catalog", "", "Import a CSV price sheet into the database and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := obs.NewLogger(cfg.App.Dev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	needDB := *migrateOnlyFlag || *importCatalogFlag != "" || cfg.App.Migrations || cfg.Catalog.Source == "db"
	var conn *gorm.DB
	if needDB {
		conn, err = db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN(), logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
	}

	if *migrateOnlyFlag || *importCatalogFlag != "" || cfg.App.Migrations {
		if err := db.Migrate(conn); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
		logger.Info("migrations completed")
	}
	if *migrateOnlyFlag {
		return
	}
	if *importCatalogFlag != "" {
		n, err := db.ImportCatalogFile(ctx, conn, catalog.FileSource{Path: *importCatalogFlag, Comma: cfg.Catalog.Delimiter})
		if err != nil {
			logger.Fatal("catalog import failed", zap.Error(err))
		}
		logger.Info("catalog imported", zap.String("file", *importCatalogFlag), zap.Int("rows", n))
		return
	}

	cat, status := loadCatalog(ctx, cfg.Catalog, conn, logger)
	resolver := pricing.New(cat, pricing.WithHourlyRate(cfg.Catalog.HourlyRate))
	store := session.NewStore(resolver)

	gate := auth.NewGate(cfg.Auth.Password, cfg.Auth.PasswordHash, cfg.Auth.SessionSecret)
	if gate.Open() {
		logger.Warn("no APP_PASSWORD configured; the quote builder is open to anyone who can reach it")
	}

	app := NewApp(NewRouterConfig(gate, store, status, logger), logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      obs.WithRecover(logger, obs.WithLogging(logger, app)),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	go pruneSessions(ctx, store, cfg.App.SessionIdleTimeout, logger)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}

// loadCatalog reads the configured catalog. A catalog that cannot be loaded
// leaves the server running with an empty one; only hourly services can then
// be quoted.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig, conn *gorm.DB, logger *zap.Logger) (*catalog.Catalog, handlers.CatalogStatus) {
	var src catalog.Source = catalog.FileSource{Path: cfg.Path, Comma: cfg.Delimiter}
	if cfg.Source == "db" {
		src = catalog.DBSource{DB: conn}
	}
	status := handlers.CatalogStatus{Source: src.String()}

	cat, skipped, err := catalog.Load(ctx, src, catalog.DefaultRules())
	if err != nil {
		logger.Warn("catalog unavailable, continuing with an empty catalog", zap.String("source", src.String()), zap.Error(err))
		return catalog.Empty(), status
	}
	for _, s := range skipped {
		logger.Warn("catalog row skipped", zap.Int("line", s.Line), zap.String("product", s.ProductID), zap.String("reason", s.Reason))
	}
	status.Available = true
	logger.Info("catalog loaded", zap.String("source", src.String()), zap.Int("products", cat.Len()))
	return cat, status
}

func pruneSessions(ctx context.Context, store *session.Store, maxIdle time.Duration, logger *zap.Logger) {
	if maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Prune(maxIdle); n > 0 {
				logger.Debug("pruned idle sessions", zap.Int("count", n))
			}
		}
	}
}
