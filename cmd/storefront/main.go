package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/receipt"
	"github.com/fjod/go_cart/storefront/internal/remote"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/stock"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/internal/storefront"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// the receipt outbox always lives in the sqlite file, whatever backs the local state
	db, err := storage.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	state, closeState, err := openState(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer closeState()

	receipts := receipt.NewLog(db)
	if err := receipts.RunMigrations(); err != nil {
		return fmt.Errorf("receipt migrations: %w", err)
	}

	bypass, err := adminBypass(cfg, log)
	if err != nil {
		return err
	}

	client := remote.NewClient(remote.Options{
		BaseURL:     cfg.RemoteBaseURL,
		Timeout:     cfg.RequestTimeout,
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	})

	guard := stock.NewGuard(client, cfg.StockOptimisticOnError, log)
	cat := catalog.New(client, guard, log)
	carts := cart.NewStore(state, log)
	sessions := session.NewStore(state, client, bypass, log)
	carts.Load(ctx)
	sessions.Load(ctx)

	orchestrator := checkout.NewOrchestrator(carts, sessions, client, receipts, cfg.RequestTimeout, log)
	shop := storefront.New(cat, guard, carts, log)

	if _, err := cat.Load(ctx); err != nil {
		// the catalog is fetched again on first request
		log.Warn("initial catalog load failed", "error", err)
	}

	if len(cfg.KafkaBrokers) > 0 {
		writer := receipt.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer writer.Close()
		go receipt.NewPublisher(receipts, writer, cfg.ReceiptPollIn, log).Run(ctx)
		log.Info("receipt relay started", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewHandler(api.Services{
			Catalog:  cat,
			Cart:     carts,
			Shop:     shop,
			Checkout: orchestrator,
			Sessions: sessions,
		}, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort, "storage", cfg.StorageBackend, "remote", cfg.RemoteBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}

// openState picks the backend for the cart and session keys.
func openState(ctx context.Context, cfg *config.Config, db *sql.DB, log *slog.Logger) (storage.Store, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil

	case "sqlite":
		s := storage.NewSQLiteStore(db)
		if err := s.RunMigrations(); err != nil {
			return nil, nil, fmt.Errorf("state migrations: %w", err)
		}
		log.Info("local state in sqlite", "path", cfg.SQLitePath)
		return s, func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("local state in redis", "addr", cfg.RedisAddr, "profile", cfg.Profile)
		return storage.NewRedisStore(client, cfg.Profile), func() { _ = client.Close() }, nil

	case "mongo":
		mdb, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		s := storage.NewMongoStore(mdb, cfg.Profile)
		if err := s.CreateIndexes(ctx); err != nil {
			_ = mdb.Client().Disconnect(ctx)
			return nil, nil, err
		}
		log.Info("local state in mongo", "db", cfg.MongoDBName, "profile", cfg.Profile)
		return s, func() { _ = mdb.Client().Disconnect(context.Background()) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func adminBypass(cfg *config.Config, log *slog.Logger) (*session.AdminBypass, error) {
	if !cfg.AdminBypassEnabled {
		return nil, nil
	}
	hash := cfg.AdminPasswordHash
	if hash == "" {
		log.Warn("ADMIN_PASSWORD_HASH not set, admin login uses the built in default password")
		var err error
		if hash, err = session.HashPassword(session.DefaultAdminPassword); err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}
	bypass, err := session.NewAdminBypass(cfg.AdminEmail, hash)
	if err != nil {
		return nil, err
	}
	log.Warn("admin bypass login enabled", "email", bypass.Email())
	return bypass, nil
}
