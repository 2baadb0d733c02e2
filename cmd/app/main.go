// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"agent-promosi/internal/config"
	"agent-promosi/internal/infra/adapters/relay"
	"agent-promosi/internal/infra/api"
	"agent-promosi/internal/infra/api/apiv1"
	pg "agent-promosi/internal/infra/db/postgres"
	httpapi "agent-promosi/internal/infra/http"
	"agent-promosi/internal/infra/i18n"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/infra/metrics"
	red "agent-promosi/internal/infra/redis"
	"agent-promosi/internal/infra/sched"
	"agent-promosi/internal/infra/web"
	"agent-promosi/internal/infra/worker"
	"agent-promosi/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted text)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	texts, err := i18n.NewTranslator(i18n.LocalesFS, cfg.I18n.Lang)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}
	go pg.ReportPoolStats(ctx, pool, 15*time.Second, logger)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	jobRepo := pg.NewJobRepoCacheDecorator(pg.NewJobRepo(pool), redisClient, cfg.Redis.TTL, logger)
	appRepo := pg.NewApplicationRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Relay ----
	webhook := relay.NewWebhookClient(cfg.Relay, texts, logger, relay.WithDev(cfg.Runtime.Dev))
	if !webhook.Configured() {
		logger.Warn().Msg("relay.webhook_url is empty; chat replies will report it")
	}
	chatRelay := relay.NewLimitedRelay(webhook, cfg.Relay.ConcurrentLimit, texts)

	// ---- Workers ----
	workers := worker.NewPool(cfg.Chat.Workers, logger)
	workers.Start(ctx)
	defer workers.Stop()

	// ---- Use cases ----
	convUC := usecase.NewConversationUseCase(chatRelay, workers, rateLimiter, texts, cfg.Chat, logger)
	jobUC := usecase.NewJobUseCase(jobRepo, appRepo, txManager, cfg.Jobs, logger)
	profileUC := usecase.NewProfileUseCase(profileRepo)

	// ---- Schedulers ----
	evictor := sched.NewConversationEvictor(cfg.Chat.SweepInterval, cfg.Chat.IdleTTL, convUC, logger)
	go func() { _ = evictor.Run(ctx) }()

	statusCron := sched.NewJobStatusCron(cfg.Jobs.StatusRefreshCron, jobUC, locker, logger)
	if err := statusCron.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("job status cron")
	}
	defer statusCron.Stop()

	// ---- HTTP ----
	srv := apiv1.NewServer(apiv1.Deps{
		Conversations:  convUC,
		Jobs:           jobUC,
		Profiles:       profileUC,
		Relay:          chatRelay,
		Texts:          texts,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, logger)
	admin := web.NewServer(jobUC, profileUC, logger)
	router := api.NewRouter(cfg.HTTP, api.NewAuthenticator(cfg.Auth), srv, admin, texts, logger)

	server := httpapi.NewServer(cfg.HTTP, router, logger)
	if err := server.Start(ctx, 10*time.Second); err != nil {
		logger.Error().Err(err).Msg("http server error")
		return
	}
	logger.Info().Msg("shutdown complete")
}
