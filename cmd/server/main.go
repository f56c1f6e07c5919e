package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cambistas-backend/internal/auth"
	"cambistas-backend/internal/cache"
	"cambistas-backend/internal/config"
	"cambistas-backend/internal/handlers"
	"cambistas-backend/internal/health"
	h "cambistas-backend/internal/http"
	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/logger"
	"cambistas-backend/internal/middleware"
	"cambistas-backend/internal/monitoring"
	"cambistas-backend/internal/repositories"
	"cambistas-backend/internal/services"
	"cambistas-backend/internal/timeutil"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	seed := flag.Bool("seed", false, "Seed the demo ledger when no snapshot is stored")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *seed {
		cfg.Ledger.SeedDemo = true
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ConfigFile == "" {
		zlog.Info("no config file found, using defaults and environment")
	}
	if cfg.JWTSecretGenerated {
		zlog.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	if err := timeutil.SetLocation(cfg.Reports.Timezone); err != nil {
		return err
	}

	store, closeStore, err := repositories.OpenBlobStore(ctx, cfg, zlog)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	defer closeStore()
	zlog.Info("blob store ready", zap.String("backend", cfg.Storage.Backend))

	var cachePinger health.Pinger
	if cfg.Redis.Cache {
		if err := cache.Init(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			zlog.Warn("report cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			zlog.Info("report cache enabled", zap.String("addr", cfg.Redis.Addr))
			cachePinger = health.PingFunc(cache.Ping)
		}
	}
	defer func() { _ = cache.Close() }()

	hub := monitoring.NewHub(zlog)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	core := ledger.New(ledger.WithStrictConfirmation(cfg.Ledger.StrictConfirmation))
	ledgerSvc := services.NewLedgerService(core,
		repositories.NewLedgerRepository(store, cfg.Storage.LedgerKey),
		hub,
		services.LedgerServiceOptions{
			RevertOnSaveFailure: cfg.Ledger.RevertOnSaveFailure,
			SeedDemo:            cfg.Ledger.SeedDemo,
		}, zlog)
	if err := ledgerSvc.Load(ctx); err != nil {
		return err
	}

	userSvc := services.NewUserService(
		repositories.NewCredentialRepository(store, cfg.Storage.UsersKey),
		services.UserServiceOptions{
			HashPasswords:   cfg.Auth.HashPasswords,
			DefaultUsername: cfg.Auth.DefaultUsername,
			DefaultPassword: cfg.Auth.DefaultPassword,
		}, zlog)
	if err := userSvc.Load(ctx); err != nil {
		return err
	}

	reportSvc := services.NewReportService(ledgerSvc, services.LabelsFor(cfg.Reports.Language), cfg.Reports.CacheTTL, zlog)

	var backupTarget services.BackupTarget
	if cfg.R2.BackupEnabled {
		client, err := repositories.NewS3Client(ctx, cfg.R2)
		if err != nil {
			return err
		}
		backupTarget = repositories.NewS3BlobStore(client, cfg.R2.Bucket, repositories.WithS3Logger(zlog.Named("r2")))
	}
	backupSvc := services.NewBackupService(backupTarget, ledgerSvc, cfg.R2.BackupPrefix, cfg.Storage.LedgerKey, cfg.R2.BackupInterval, zlog)
	backupSvc.Start(ctx)
	defer backupSvc.Stop()

	jwtManager := auth.NewJWTManager(cfg.JWT)
	router := h.NewRouter(h.Handlers{
		Auth:    handlers.NewAuthHandler(userSvc, jwtManager, zlog),
		Groups:  handlers.NewGroupHandler(ledgerSvc, zlog),
		Agents:  handlers.NewAgentHandler(ledgerSvc, zlog),
		Summary: handlers.NewSummaryHandler(ledgerSvc, zlog),
		Reports: handlers.NewReportHandler(reportSvc, zlog),
		Backups: handlers.NewBackupHandler(backupSvc, zlog),
		Health:  handlers.NewHealthHandler(health.NewHealthChecker(store, cfg.Storage.Backend, cachePinger).WatchFeed(hub)),
	}, middleware.NewAuthMiddleware(jwtManager, userSvc), hub, zlog)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      middleware.NewCORS(cfg.Server)(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.ShutdownTimeout > 0 {
		return cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
