package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"

	"github.com/X1ag/ShuttleScheduler/internal/config"
	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/X1ag/ShuttleScheduler/internal/infrastructure/events"
	"github.com/X1ag/ShuttleScheduler/internal/infrastructure/rediscache"
	"github.com/X1ag/ShuttleScheduler/internal/logging"
	"github.com/X1ag/ShuttleScheduler/internal/repository/memory"
	"github.com/X1ag/ShuttleScheduler/internal/repository/postgres"
	"github.com/X1ag/ShuttleScheduler/internal/usecase"
	"github.com/X1ag/ShuttleScheduler/transport/httpapi"
	"github.com/X1ag/ShuttleScheduler/transport/telegram"
	"github.com/X1ag/ShuttleScheduler/transport/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("shuttle bot stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	migrate := pflag.Bool("migrate", false, "apply database migrations on start")
	logLevel := pflag.String("log-level", "", "override LOG_LEVEL")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *migrate {
		cfg.RunMigrations = true
	}
	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		rides domain.RideRepository
		users domain.UserRepository
		ready func(context.Context) error
	)
	if cfg.PGDSN != "" {
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.PGDSN, logger); err != nil {
				return err
			}
		}
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		rides = postgres.NewRideRepository(pool)
		users = postgres.NewUserRepository(pool)
		ready = pool.Ping
		logger.Info("using postgres store")
	} else {
		rides = memory.NewRideRepository()
		users = memory.NewUserRepository()
		logger.Warn("PG_DSN not set, using in-memory store")
	}

	var client *bot.Bot
	if cfg.BotToken != "" {
		client, err = bot.New(cfg.BotToken)
		if err != nil {
			return fmt.Errorf("create telegram client: %w", err)
		}
	} else {
		logger.Warn("BOT_TOKEN not set, telegram disabled")
	}

	userUC := usecase.NewUserUsecase(users, telegram.NewChatResolver(client))
	var names domain.NameResolver = userUC
	if cfg.RedisAddr != "" {
		kv, rdb := rediscache.NewRedisKV(cfg.RedisAddr, cfg.RedisPassword)
		defer rdb.Close()
		names = rediscache.NewNameCache(kv, userUC, cfg.NameCacheTTL, logger)
		logger.Info("name cache enabled", "addr", cfg.RedisAddr)
	}

	var publisher domain.EventPublisher = domain.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
		logger.Info("ride events enabled", "topic", cfg.KafkaTopic)
	}

	timetable, err := cfg.ParsedTimetable()
	if err != nil {
		return err
	}
	policy, err := domain.ParseSweepPolicy(cfg.SweepPolicy)
	if err != nil {
		return err
	}
	hours, err := cfg.Hours()
	if err != nil {
		return err
	}
	resetAt, err := domain.ParseTimeOfDay(cfg.ResetAt)
	if err != nil {
		return err
	}

	rideUC := usecase.NewRideUsecase(rides, names, publisher, usecase.RideConfig{
		Timetable:   timetable,
		GracePeriod: cfg.GracePeriod,
		SweepPolicy: policy,
		Location:    cfg.Location(),
	}, logger)

	tgBot := telegram.NewBot(client, rideUC, userUC, hours, cfg.AllowedChatIDs, logger)
	hub := httpapi.NewDigestHub(logger)

	opts := httpapi.Options{Ready: ready}
	if client != nil {
		tgBot.RegisterHandlers()
		if cfg.WebhookURL != "" {
			u, err := url.Parse(cfg.WebhookURL)
			if err != nil {
				return fmt.Errorf("parse WEBHOOK_URL: %w", err)
			}
			opts.WebhookPath = u.Path
			opts.Webhook = tgBot.WebhookHandler()
			if err := tgBot.StartWebhook(ctx, cfg.WebhookURL); err != nil {
				return err
			}
			logger.Info("telegram webhook registered", "path", u.Path)
		} else {
			go tgBot.Start(ctx)
			logger.Info("telegram long polling started")
		}
	}

	w := worker.NewWorker(rideUC, tgBot, hub, worker.Config{
		SweepInterval:        cfg.SweepInterval,
		DigestInterval:       cfg.DigestInterval,
		DriversChatID:        cfg.DriversChatID,
		StudentsChatID:       cfg.StudentsChatID,
		ResetAt:              resetAt,
		Hours:                hours,
		WorkdayStartDrivers:  telegram.MsgWorkdayStartDrivers,
		WorkdayEndDrivers:    telegram.MsgWorkdayEndDrivers,
		WorkdayStartStudents: telegram.MsgWorkdayStartStudents,
		WorkdayEndStudents:   telegram.MsgWorkdayEndStudents,
	}, logger)
	w.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewServer(rideUC, hub, opts, logger),
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
