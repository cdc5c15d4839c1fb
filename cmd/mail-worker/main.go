package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/harborlight-org/harborlight-backend/internal/mailer"
	"github.com/harborlight-org/harborlight-backend/internal/mailqueue"
	"github.com/harborlight-org/harborlight-backend/pkg/config"
	"github.com/harborlight-org/harborlight-backend/pkg/db"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
	"github.com/harborlight-org/harborlight-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "mail-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "mail-worker"

	logg = logger.New(logger.Options{
		ServiceName: "mail-worker",
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

	sender, err := mailer.NewSendGridSender(cfg.Mail)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail sender", err)
		os.Exit(1)
	}

	service, err := mailer.NewService(mailer.ServiceParams{
		Logger:       logg,
		Queue:        mailqueue.NewRepository(dbClient.DB()),
		Sender:       sender,
		PollInterval: cfg.Mail.PollInterval,
		BatchSize:    cfg.Mail.BatchSize,
		MaxAttempts:  cfg.Mail.MaxAttempts,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create mail dispatcher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting mail worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "mail worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "mail worker shutting down gracefully")
}
