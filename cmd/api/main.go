package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gymdeskhq/gymdesk-backend/api/controllers"
	"github.com/gymdeskhq/gymdesk-backend/api/routes"
	"github.com/gymdeskhq/gymdesk-backend/internal/attachments"
	"github.com/gymdeskhq/gymdesk-backend/internal/auth"
	"github.com/gymdeskhq/gymdesk-backend/internal/clients"
	"github.com/gymdeskhq/gymdesk-backend/internal/documents"
	"github.com/gymdeskhq/gymdesk-backend/internal/memberships"
	"github.com/gymdeskhq/gymdesk-backend/internal/pathologies"
	"github.com/gymdeskhq/gymdesk-backend/internal/payments"
	"github.com/gymdeskhq/gymdesk-backend/internal/plans"
	"github.com/gymdeskhq/gymdesk-backend/internal/users"
	"github.com/gymdeskhq/gymdesk-backend/pkg/auth/session"
	"github.com/gymdeskhq/gymdesk-backend/pkg/config"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
	"github.com/gymdeskhq/gymdesk-backend/pkg/metrics"
	"github.com/gymdeskhq/gymdesk-backend/pkg/migrate"
	"github.com/gymdeskhq/gymdesk-backend/pkg/redis"
	"github.com/gymdeskhq/gymdesk-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs client", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	clientsRepo := clients.NewRepository(gormDB)
	plansRepo := plans.NewRepository(gormDB)
	membershipsRepo := memberships.NewRepository(gormDB)
	paymentsRepo := payments.NewRepository(gormDB)
	pathologiesRepo := pathologies.NewRepository(gormDB)
	documentsRepo := documents.NewRepository(gormDB)
	attachmentsRepo := attachments.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gormDB),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	clientsService, err := clients.NewService(clientsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create clients service", err)
		os.Exit(1)
	}

	plansService, err := plans.NewService(plansRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create plans service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:   paymentsRepo,
		DB:     dbClient,
		Config: cfg.Payments,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	membershipsService, err := memberships.NewService(memberships.ServiceParams{
		Repo:     membershipsRepo,
		Plans:    plansRepo,
		Clients:  clientsRepo,
		Payments: paymentsService,
		DB:       dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create memberships service", err)
		os.Exit(1)
	}

	pathologiesService, err := pathologies.NewService(pathologies.ServiceParams{
		Repo:    pathologiesRepo,
		Clients: clientsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pathologies service", err)
		os.Exit(1)
	}

	documentsService, err := documents.NewService(documents.ServiceParams{
		Repo:        documentsRepo,
		Clients:     clientsRepo,
		Memberships: membershipsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create documents service", err)
		os.Exit(1)
	}

	attachmentsService, err := attachments.NewService(attachments.ServiceParams{
		Repo:    attachmentsRepo,
		Clients: clientsRepo,
		Store:   gcsClient,
		Config:  cfg.Attachments,
		GCS:     cfg.GCS,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create attachments service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	router := routes.New(routes.Deps{
		Cfg:     cfg,
		Logg:    logg,
		Metrics: httpMetrics,

		Sessions:    sessionManager,
		RateLimiter: redisClient,
		Idempotency: redisClient,

		Health:      controllers.NewHealthController(dbClient, redisClient, logg),
		Auth:        controllers.NewAuthController(authService, logg),
		Clients:     controllers.NewClientsController(clientsService, attachmentsService, logg),
		Plans:       controllers.NewPlansController(plansService, logg),
		Memberships: controllers.NewMembershipsController(membershipsService, logg),
		Payments:    controllers.NewPaymentsController(paymentsService, logg),
		Pathologies: controllers.NewPathologiesController(pathologiesService, logg),
		Documents:   controllers.NewDocumentsController(documentsService, logg),
		Attachments: controllers.NewAttachmentsController(attachmentsService, logg),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
