package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pantry/internal/api"
	"pantry/internal/app"
	"pantry/internal/bot"
	"pantry/internal/config"
	"pantry/internal/expiry"
	"pantry/internal/models"
	"pantry/internal/notify"
	"pantry/internal/service"
	"pantry/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := app.Bootstrap(app.ConfigPath(), "bot-main")
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if cfg.Telegram.BotToken == "" {
		logger.Error().Msg("Set telegram.bot_token in config.yaml")
		return os.ErrInvalid
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	botAPI, err := bot.Connect(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create Bot API client")
		return err
	}
	tgService := service.NewTelegramService(botAPI)

	sink := notify.NewTelegramSink(tgService, a.Prefs, a.Settings, logger)
	checker := expiry.NewChecker(a.DB, sink, cfg.Pantry.Loc(), logger)

	scheduler := worker.NewScheduler(a.Settings, worker.DefaultRetryPolicy, logger)
	defer scheduler.Stop()
	if err := scheduleExpirationCheck(ctx, scheduler, checker, cfg.Pantry.CheckInterval); err != nil {
		return err
	}

	a.StartInventorySync(ctx)
	a.StartBackups(ctx)
	app.StartMetrics(ctx, cfg.Monitoring, logger)

	if cfg.API.Enabled {
		stopAPI := startHTTPAPI(cfg, a, logger)
		defer stopAPI()
	}

	telegramBot := bot.NewBot(
		tgService, cfg, a.Items, a.Prefs, a.Limiter, checker,
		bot.NewMetrics(prometheus.DefaultRegisterer), logger,
	)

	logger.Info().Msg("Bot started")
	telegramBot.Start(ctx)
	telegramBot.Stop()

	logger.Info().Msg("Shutdown complete.")
	return nil
}

// scheduleExpirationCheck runs the check now and then once per interval.
func scheduleExpirationCheck(ctx context.Context, scheduler *worker.Scheduler, checker *expiry.Checker, interval time.Duration) error {
	scheduler.RunOnce(ctx, models.ExpirationJobName, checker.Job)
	if _, err := scheduler.SchedulePeriodic(ctx, models.ExpirationJobName, interval, checker.Job); err != nil {
		return fmt.Errorf("schedule expiration check: %w", err)
	}
	return nil
}

func startHTTPAPI(cfg *config.Config, a *app.App, logger *zerolog.Logger) func() {
	apiServer := api.NewHTTPServer(&cfg.API, a.Items, cfg.Pantry.Loc(), logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = apiServer.Shutdown(shutdownCtx)
	}
}
