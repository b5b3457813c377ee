package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zeek-James/pem-zee/internal/config"
	"github.com/Zeek-James/pem-zee/internal/handler"
	"github.com/Zeek-James/pem-zee/internal/infra"
	"github.com/Zeek-James/pem-zee/internal/repository"
	"github.com/Zeek-James/pem-zee/internal/router"
	"github.com/Zeek-James/pem-zee/internal/service"
	"github.com/Zeek-James/pem-zee/internal/valuation"
	"github.com/Zeek-James/pem-zee/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Palm Oil Ledger API
// @version 1.0
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(cfg.DatabaseURL, time.Duration(cfg.DBSlowQueryMs)*time.Millisecond)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis backs the job queue, dashboard cache and cron lock. The ledger
	// itself works without it.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without queue and cache")
			rdb = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Repositories ─────────────────────────────────────────────────────────
	tx := repository.NewTransactor(db)
	harvestRepo := repository.NewHarvestRepository(db)
	millingRepo := repository.NewMillingRepository(db)
	storageRepo := repository.NewStorageRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	calc := valuation.NewCalculator(cfg.ValuationParams())
	cache := infra.NewRedisCache(rdb, "pemzee:dashboard", time.Duration(cfg.CacheTTLSeconds)*time.Second)
	dispatcher := worker.NewDispatcher(rdb)

	harvestSvc := service.NewHarvestService(harvestRepo, calc, cache, nil)
	ledgerSvc := service.NewLedgerService(tx, harvestRepo, millingRepo, storageRepo, saleRepo, calc, cache, nil)
	dashboardSvc := service.NewDashboardService(harvestRepo, millingRepo, storageRepo, saleRepo, calc, cache, nil)
	reportSvc := service.NewReportService(dashboardSvc, calc, cfg.ReportsPath, nil)
	authSvc := service.NewAuthService(userRepo, cfg)
	var auditQueue service.AuditQueue
	if rdb != nil {
		auditQueue = dispatcher
	}
	auditSvc := service.NewAuditService(auditRepo, auditQueue)

	// ── Workers ──────────────────────────────────────────────────────────────
	var pool *worker.Pool
	if rdb != nil {
		mailer := infra.NewMailer(cfg)
		relay := infra.NewRelayBreaker(infra.SMTPBreakerConfig())
		pool = worker.NewPool(rdb, map[string]worker.Handler{
			worker.JobAudit: worker.NewAuditWorker(auditRepo).Process,
			worker.JobEmail: worker.NewEmailWorker(mailer, relay).Process,
		})
		pool.Start(ctx, cfg.WorkerPoolSize)

		recipients := worker.ParseRecipients(cfg.AlertDigestTo)
		if mailer.Enabled() && len(recipients) > 0 {
			digest := worker.NewAlertDigest(dashboardSvc, dispatcher, infra.NewLocker(rdb), recipients)
			scheduler, err := digest.Schedule(ctx, cfg.AlertDigestCron)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to schedule alert digest")
			}
			defer func() { <-scheduler.Stop().Done() }()
		}
	}

	// ── HTTP ─────────────────────────────────────────────────────────────────
	r := router.New(cfg, db, rdb, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Harvest:   handler.NewHarvestHandler(harvestSvc),
		Milling:   handler.NewMillingHandler(ledgerSvc),
		Storage:   handler.NewStorageHandler(ledgerSvc),
		Sales:     handler.NewSalesHandler(ledgerSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Reports:   handler.NewReportsHandler(reportSvc),
	}, auditSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // report rendering
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("palm oil ledger listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	log.Info().Msg("server exited")
}

// setupLogger: dev pretty console, prod JSON.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
