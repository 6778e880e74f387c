package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"telegram-identity-bot/internal/application"
	"telegram-identity-bot/internal/config"
	"telegram-identity-bot/internal/domain/model"
	"telegram-identity-bot/internal/domain/ports/repository"
	pg "telegram-identity-bot/internal/infra/db/postgres"
	httpapi "telegram-identity-bot/internal/infra/http"
	"telegram-identity-bot/internal/infra/logging"
	"telegram-identity-bot/internal/infra/metrics"
	red "telegram-identity-bot/internal/infra/redis"
	tele "telegram-identity-bot/internal/infra/telegram"
	"telegram-identity-bot/internal/infra/worker"
	"telegram-identity-bot/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres (startup connectivity check included) ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	// ---- Repositories ----
	dialogueRepo := pg.NewDialogueRepo[model.DialogueState](pool)
	var profileRepo repository.ProfileRepository = pg.NewProfileRepo(pool)

	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		profileRepo = red.NewProfileCacheDecorator(profileRepo, redisClient, cfg.Redis.TTL)
		logger.Info().Msg("profile cache enabled")
	}

	// ---- Engine ----
	identityUC := usecase.NewIdentityUseCase(profileRepo, logger)

	workers := worker.NewKeyedPool(cfg.Bot.Workers, cfg.Bot.QueueDepth, logger)
	workers.Start(ctx)

	bot, err := tele.NewBot(&cfg.Bot, workers, logger)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	dispatcher := application.NewDispatcher(dialogueRepo, bot, logger)
	dispatcher.Register(model.StateStart, identityUC.Start)
	dispatcher.Register(model.StateRequestLogin, identityUC.RequestLogin)
	dispatcher.Register(model.StateRequestFullName, identityUC.RequestFullName)
	dispatcher.Register(model.StateIdentifiedUser, identityUC.IdentifiedUser)
	if err := dispatcher.ValidateRoutes(); err != nil {
		log.Fatalf("routes: %v", err)
	}

	// ---- Ops server ----
	ops := httpapi.NewServer(&cfg.Ops, pool, logger)
	go func() {
		if err := ops.Start(); err != nil {
			logger.Error().Err(err).Msg("ops server stopped")
		}
	}()

	// ---- Poll until shutdown ----
	if err := bot.StartPolling(ctx, dispatcher.Dispatch); err != nil {
		logger.Error().Err(err).Msg("polling stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown")
	}
	workers.Wait()
	logger.Info().Msg("shutdown complete")
}
