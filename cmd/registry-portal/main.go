package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/aquacred-registry/internal/auth"
	"github.com/nurpe/aquacred-registry/internal/chain"
	"github.com/nurpe/aquacred-registry/internal/config"
	"github.com/nurpe/aquacred-registry/internal/db"
	"github.com/nurpe/aquacred-registry/internal/excel"
	httphandler "github.com/nurpe/aquacred-registry/internal/http"
	"github.com/nurpe/aquacred-registry/internal/http/middleware"
	"github.com/nurpe/aquacred-registry/internal/logger"
	"github.com/nurpe/aquacred-registry/internal/model"
	"github.com/nurpe/aquacred-registry/internal/pdf"
	"github.com/nurpe/aquacred-registry/internal/repository"
	"github.com/nurpe/aquacred-registry/internal/service"
)

const serviceName = "aquacred-registry"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var database *gorm.DB
	var store service.SubmissionStore
	if cfg.DB.DSN != "" {
		database, err = db.New(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect database")
		}
		store = repository.NewSubmissionRepository(database)
	} else {
		log.Warn().Msg("DB_DSN not set, submission audit trail disabled")
	}

	connect := func(ctx context.Context) (service.Registry, error) {
		registry, err := chain.Dial(ctx, cfg.Chain)
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("contract", registry.Address().Hex()).
			Bool("can_transact", registry.CanTransact()).
			Msg("connected to registry contract")
		return registry, nil
	}

	registryService := service.NewRegistryService(connect, cfg, log)
	defer registryService.Close()

	submissionService := service.NewSubmissionService(registryService, store, log)
	reportService := service.NewReportService(registryService, excel.NewGenerator(), pdf.NewGenerator(), cfg)

	if cfg.Registry.WatchEvents {
		watchRegistrations(ctx, registryService, log)
	}

	authMiddleware := middleware.Anonymous()
	if cfg.Auth.AccessSecret != "" {
		authMiddleware = middleware.Auth(auth.NewParser(cfg.Auth.AccessSecret))
	} else {
		log.Warn().Msg("JWT_ACCESS_SECRET not set, submissions are open")
	}

	chainConfigured := cfg.Chain.RPCURL != "" && cfg.Chain.ContractAddress != ""
	health := httphandler.NewHealthHandler(serviceName, cfg.Version, registryService.Network(), chainConfigured, database)
	handler := httphandler.NewHandler(registryService, submissionService, reportService, log)
	router := httphandler.NewRouter(handler, health, authMiddleware, cfg, log)

	if err := serve(ctx, router, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func serve(ctx context.Context, router *gin.Engine, cfg *config.Config, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("network", cfg.Chain.Network).Msg("starting registry portal")
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// watchRegistrations logs every new registration for the lifetime of ctx.
// A failed start is logged and the portal keeps serving.
func watchRegistrations(ctx context.Context, registry *service.RegistryService, log zerolog.Logger) {
	sub, err := registry.ListenForProjectRegistrations(ctx, func(p model.Project) {
		log.Info().
			Uint64("project_id", p.ProjectID).
			Str("project_name", p.ProjectName).
			Str("project_type", p.ProjectType).
			Msg("project registered on chain")
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to watch project registrations")
		return
	}

	go func() {
		defer sub.Unsubscribe()
		select {
		case <-ctx.Done():
		case err := <-sub.Err():
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("project registration watch stopped")
			}
		}
	}()
}
