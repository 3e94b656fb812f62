// Command server runs the swim-records HTTP API: the import trigger and the
// club-record read endpoints, backed by SQLite.
//
//	@title                      Swim Records API
//	@version                    1.0
//	@description                Imports federation results for club swimmers and serves club records.
//	@BasePath                   /api/v1
//	@securityDefinitions.apikey BearerAuth
//	@in                         header
//	@name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/swim-records/internal/config"
	"github.com/tbourn/swim-records/internal/ffn"
	httpapi "github.com/tbourn/swim-records/internal/http"
	"github.com/tbourn/swim-records/internal/observability"
	"github.com/tbourn/swim-records/internal/records"
	"github.com/tbourn/swim-records/internal/repo"
	"github.com/tbourn/swim-records/internal/services"
	"github.com/tbourn/swim-records/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName,
		sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}
	n, err := repo.SeedEventCodes(ctx, db, records.DefaultEventCodes())
	if err != nil {
		return err
	}
	log.Info().Str("db", cfg.DBPath).Int("event_codes_seeded", n).Msg("store ready")

	fetcher := ffn.NewFetcher(cfg.FFN.BaseURL, cfg.FFN.UserAgent, cfg.FFN.FetchTimeout)
	quota := services.NewQuotaLimiter(db, cfg.Quota.Coach, cfg.Quota.Default)
	importer := services.NewImportService(db, fetcher, cfg.FFN.BatchSize, quota, cfg.FFN.SwimmerDelay)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, importer, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("ffn", cfg.FFN.BaseURL).Bool("auth_disabled", cfg.Auth.Disabled).Msg("listening")
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

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
