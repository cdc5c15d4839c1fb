package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/harborlight-org/harborlight-backend/api/routes"
	"github.com/harborlight-org/harborlight-backend/internal/applications"
	"github.com/harborlight-org/harborlight-backend/internal/billing"
	"github.com/harborlight-org/harborlight-backend/internal/content"
	"github.com/harborlight-org/harborlight-backend/internal/mailqueue"
	"github.com/harborlight-org/harborlight-backend/internal/members"
	"github.com/harborlight-org/harborlight-backend/internal/plans"
	"github.com/harborlight-org/harborlight-backend/internal/resources"
	stripewebhook "github.com/harborlight-org/harborlight-backend/internal/webhooks/stripe"
	"github.com/harborlight-org/harborlight-backend/pkg/config"
	"github.com/harborlight-org/harborlight-backend/pkg/db"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
	"github.com/harborlight-org/harborlight-backend/pkg/migrate"
	"github.com/harborlight-org/harborlight-backend/pkg/redis"
	"github.com/harborlight-org/harborlight-backend/pkg/storage/gcs"
	"github.com/harborlight-org/harborlight-backend/pkg/stripe"
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

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	applicationRepo := applications.NewRepository(dbClient.DB())
	memberRepo := members.NewRepository(dbClient.DB())
	planRepo := plans.NewRepository(dbClient.DB())
	mailRepo := mailqueue.NewRepository(dbClient.DB())
	contentRepo := content.NewRepository(dbClient.DB())
	resourceRepo := resources.NewRepository(dbClient.DB())

	planService, err := plans.NewService(plans.ServiceParams{Repo: planRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create plan service", err)
		os.Exit(1)
	}

	applicationService, err := applications.NewService(applications.ServiceParams{
		Repo:              applicationRepo,
		MemberRepo:        memberRepo,
		PlanRepo:          planRepo,
		TransactionRunner: dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create application service", err)
		os.Exit(1)
	}

	memberService, err := members.NewService(members.ServiceParams{Repo: memberRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create member service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{
		ApplicationRepo: applicationRepo,
		PlanRepo:        planRepo,
		StripeClient:    billing.NewStripeClient(stripeClient),
		DefaultCurrency: cfg.Checkout.DefaultCurrency,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	contentService, err := content.NewService(content.ServiceParams{Repo: contentRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create content service", err)
		os.Exit(1)
	}

	resourceService, err := resources.NewService(resources.ServiceParams{
		Repo:            resourceRepo,
		Store:           gcsClient,
		UploadURLExpiry: cfg.GCS.UploadURLExpiry,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create resource service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		ApplicationRepo:   applicationRepo,
		MailRepo:          mailRepo,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Cron.IdempotencyTTL, "stripe_event")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

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
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			GCS:          gcsClient,
			Stripe:       stripeClient,
			Webhooks:     webhookService,
			Guard:        webhookGuard,
			Applications: applicationService,
			Billing:      billingService,
			Members:      memberService,
			Plans:        planService,
			Content:      contentService,
			Resources:    resourceService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-shutdownCtx.Done()
		graceCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
