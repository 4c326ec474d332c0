// Package main is the entry point for the oddsline prediction tracker API
// server.  It wires together the pricing engine, the lifecycle store, and the
// settlement sweep, and starts the HTTP server alongside the WebSocket hub.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/oddsline/tracker/internal/api"
	"github.com/oddsline/tracker/internal/chain"
	"github.com/oddsline/tracker/internal/config"
	"github.com/oddsline/tracker/internal/domain"
	"github.com/oddsline/tracker/internal/remote"
	"github.com/oddsline/tracker/internal/repository"
	"github.com/oddsline/tracker/internal/scheduler"
	"github.com/oddsline/tracker/internal/service"
	"github.com/oddsline/tracker/internal/wallet"
	"github.com/oddsline/tracker/internal/ws"
)

func main() {
	// ── 1. Logger ─────────────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting oddsline tracker server", "env", cfg.Server.Env, "port", cfg.Server.Port)

	// ── 2. Database ───────────────────────────────────────────────────────────
	db, err := sqlx.Connect("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		logger.Error("database ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	// ── 3. Migrations ─────────────────────────────────────────────────────────
	if err = runMigrations(db, "migrations"); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// ── 4. Repositories ───────────────────────────────────────────────────────
	predictionRepo := repository.NewPredictionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	// ── 5. Outbound clients ───────────────────────────────────────────────────
	marketSrc := chain.NewClient(cfg.Chain.IndexerURL, cfg.Chain.FetchTimeout)
	walletClient := wallet.NewClient(cfg.Wallet.RelayerURL, cfg.Wallet.SubmitTimeout)

	var syncer *remote.Client
	if cfg.Remote.SyncURL != "" {
		syncer = remote.NewClient(cfg.Remote.SyncURL, cfg.Remote.PushTimeout)
		logger.Info("remote history sync enabled", "url", cfg.Remote.SyncURL)
	}

	// ── 6. WebSocket Hub ──────────────────────────────────────────────────────
	hub := ws.NewHub(cfg.Server.AllowedOrigins)

	// ── 7. Services ───────────────────────────────────────────────────────────
	// Keep a typed-nil *remote.Client out of the interface fields.
	var sync domain.RemoteSync
	if syncer != nil {
		sync = syncer
	}

	lifecycleSvc := service.NewLifecycleService(predictionRepo, attemptRepo, marketSrc, walletClient, cfg, logger)
	lifecycleSvc.SetNotifier(hub)
	if sync != nil {
		lifecycleSvc.SetSyncer(sync)
	}

	settlementSvc := service.NewSettlementService(predictionRepo, marketSrc, hub, sync, logger)

	// ── 8. Root context + signal handling ─────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 9. Start WS Hub ───────────────────────────────────────────────────────
	go hub.Run()
	logger.Info("websocket hub started")

	// ── 10. Scheduler ─────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(settlementSvc, predictionRepo, marketSrc, hub, cfg, logger)
	sched.Start(ctx)

	// ── 11. HTTP Router ───────────────────────────────────────────────────────
	router := api.SetupRouter(api.RouterDeps{
		LifecycleSvc: lifecycleSvc,
		Markets:      marketSrc,
		Hub:          hub,
		Cfg:          cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── 12. Start server ──────────────────────────────────────────────────────
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
			stop() // trigger graceful shutdown
		}
	}()

	// ── 13. Graceful shutdown ─────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received, draining connections…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}

	db.Close()
	logger.Info("server stopped cleanly")
}

// runMigrations reads all *.sql files from dir, sorted by name, and executes
// them sequentially.  Idempotent: SQL files should use IF NOT EXISTS / ON CONFLICT.
func runMigrations(db *sqlx.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("runMigrations: read dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("runMigrations: read %q: %w", f, err)
		}
		if _, err = db.Exec(string(data)); err != nil {
			return fmt.Errorf("runMigrations: exec %q: %w", f, err)
		}
		slog.Info("migration applied", "file", filepath.Base(f))
	}
	return nil
}
