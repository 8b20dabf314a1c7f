package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brunob329-droid/ifrs18/internal/application"
	"github.com/brunob329-droid/ifrs18/internal/application/evaluation"
	"github.com/brunob329-droid/ifrs18/internal/config"
	domain "github.com/brunob329-droid/ifrs18/internal/domain/classification"
	"github.com/brunob329-droid/ifrs18/internal/infra/httpserver"
	"github.com/brunob329-droid/ifrs18/internal/infra/ledger/jsonfile"
	mysqlledger "github.com/brunob329-droid/ifrs18/internal/infra/ledger/mysql"
	pgledger "github.com/brunob329-droid/ifrs18/internal/infra/ledger/postgres"
	sqliteledger "github.com/brunob329-droid/ifrs18/internal/infra/ledger/sqlite"
	minioStore "github.com/brunob329-droid/ifrs18/internal/infra/storage"
	"github.com/brunob329-droid/ifrs18/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	if err := config.InitLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer zap.L().Sync()

	ctx := context.Background()

	ledger, checkers, cleanup, err := buildLedger(ctx, cfg)
	if err != nil {
		zap.L().Fatal("ledger init error", zap.Error(err))
	}
	defer cleanup()

	var archive domain.ArchiveStore
	if cfg.Archive.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.BucketName,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.UseSSL,
		)
		if err != nil {
			zap.L().Fatal("archive store init error", zap.Error(err))
		}
		archive = store
	}

	svc := &evaluation.Service{
		Ledger:  ledger,
		Archive: archive,
		Clock:   application.SystemClock{},
		Policy: evaluation.Policy{
			RequireCompanyName: cfg.Validation.RequireCompanyName,
		},
	}

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Mount("/", httpserver.NewRouter(svc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zap.L().Info("server listening",
			zap.String("addr", addr),
			zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	zap.L().Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		zap.L().Warn("shutdown error", zap.Error(err))
	}
}

// buildLedger wires the configured storage backend and its health checks.
func buildLedger(ctx context.Context, cfg *config.Config) (domain.Ledger, map[string]middleware.HealthChecker, func(), error) {
	checkers := map[string]middleware.HealthChecker{}
	noop := func() {}

	switch cfg.Storage.Driver {
	case "", "jsonfile":
		l := jsonfile.New(cfg.Storage.Path)
		checkers["ledger"] = &middleware.LedgerHealthChecker{Ledger: l}
		return l, checkers, noop, nil

	case "sqlite":
		l, err := sqliteledger.Open(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, nil, noop, err
		}
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: l.DB()}
		return l, checkers, func() { l.Close() }, nil

	case "mysql":
		db, err := mysqlledger.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, noop, err
		}
		l := mysqlledger.NewLedger(db)
		if err := l.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
		return l, checkers, func() { db.Close() }, nil

	case "postgres":
		db, err := pgledger.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, noop, err
		}
		l := pgledger.NewLedger(db)
		if err := l.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
		return l, checkers, func() { db.Close() }, nil

	default:
		return nil, nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
