// Package app wires the pantry stack shared by the bot, the API server and
// the admin CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"pantry/internal/category"
	"pantry/internal/config"
	"pantry/internal/database"
	"pantry/internal/domain"
	"pantry/internal/events"
	"pantry/internal/google"
	"pantry/internal/logging"
	"pantry/internal/metrics"
	"pantry/internal/notify"
	"pantry/internal/provider/openfoodfacts"
	"pantry/internal/repository"
	"pantry/internal/service"
	"pantry/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ConfigPath resolves the config file from CONFIG_PATH.
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

// Bootstrap loads the config and builds the logger for one binary.
func Bootstrap(configPath, component string) (*config.Config, *zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", component).Logger()
	return cfg, &logger, closer, nil
}

// App holds the long-lived components.
type App struct {
	Config   *config.Config
	DB       *database.DB
	Redis    *redis.Client
	Settings domain.SettingsStore
	Limiter  domain.RateLimiter
	Registry *category.Registry
	Bus      *events.EventBus
	Barcodes *service.BarcodeService
	Items    *service.ItemService
	Prefs    *notify.Preferences

	logger *zerolog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	if dir := filepath.Dir(cfg.Database.Path); cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a := &App{Config: cfg, DB: db, logger: logger}
	a.initSettings(ctx)

	a.Registry = category.NewRegistry(a.Settings, cfg.Pantry.DefaultCategories, logger)
	if err := a.Registry.Load(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load categories: %w", err)
	}

	a.Bus = events.NewEventBus(logger)
	a.Bus.Subscribe(func(e *events.Event) error {
		logger.Debug().Str("event", e.Type).RawJSON("payload", e.Payload).Msg("inventory event")
		return nil
	}, events.InventoryEvents...)

	var lookup domain.ProductLookup
	if !cfg.Barcode.Disabled {
		lookup = &openfoodfacts.Client{
			BaseURL:    cfg.Barcode.OpenFoodFactsURL,
			HTTPClient: &http.Client{Timeout: cfg.Barcode.Timeout},
			UserAgent:  fmt.Sprintf("%s/%s", cfg.App.Name, cfg.App.Version),
		}
	}
	a.Barcodes = service.NewBarcodeService(db, lookup, cfg.Barcode.CacheTTL, cfg.Barcode.Timeout, logger)
	a.Items = service.NewItemService(db, a.Registry, a.Barcodes, a.Bus, cfg.Pantry, logger)
	a.Prefs = notify.NewPreferences(a.Settings, cfg.Notifications)

	// items written by an older build may reference unknown categories
	if err := a.Items.Reconcile(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial category reconcile failed")
	}
	return a, nil
}

// initSettings prefers redis with sqlite as fallback.
func (a *App) initSettings(ctx context.Context) {
	local := repository.NewSQLiteSettingsStore(a.DB)
	a.Settings = local
	a.Limiter = repository.NewMemorySettingsStore()

	if a.Config.Redis.Address == "" {
		return
	}
	client := repository.NewRedisClient(a.Config.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		a.logger.Warn().Err(err).Msg("Redis unavailable, using local settings")
		_ = client.Close()
		return
	}

	remote := repository.NewRedisSettingsStore(client, a.Config.Redis.Prefix)
	a.Redis = client
	a.Settings = repository.NewFailoverSettingsStore(remote, local, a.logger)
	a.Limiter = remote
	a.logger.Info().Str("addr", a.Config.Redis.Address).Msg("Redis connected")
}

// InventoryMirror returns the Sheets mirror, or nil when it is not configured.
func (a *App) InventoryMirror(ctx context.Context) (*google.InventorySheets, error) {
	g := a.Config.Google
	if !g.Enabled() {
		return nil, nil
	}
	sheets, err := google.NewInventorySheets(ctx, g.CredentialsFile, g.InventorySpreadsheet, g.InventorySheet, a.Config.Pantry.Loc())
	if err != nil {
		return nil, err
	}
	if err := sheets.TestConnection(ctx); err != nil {
		if email, e := google.ServiceAccountEmail(g.CredentialsFile); e == nil {
			a.logger.Error().Str("share_with", email).Msg("Share the spreadsheet with the service account")
		}
		return nil, err
	}
	return sheets, nil
}

// StartInventorySync mirrors the inventory after every item mutation.
func (a *App) StartInventorySync(ctx context.Context) {
	mirror, err := a.InventoryMirror(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Google Sheets mirror disabled")
		return
	}
	if mirror == nil {
		return
	}

	sync := worker.NewInventorySyncWorker(a.DB, mirror, worker.DefaultRetryPolicy, a.logger)
	sync.Subscribe(a.Bus)
	go sync.Start(ctx)
	sync.Trigger()
	a.logger.Info().Msg("Google Sheets mirror started")
}

func (a *App) StartBackups(ctx context.Context) {
	if !a.Config.Backup.Enabled {
		return
	}
	backups := database.NewBackupService(a.DB, a.Config.Database.Path, a.Config.Backup, a.logger)
	go backups.Start(ctx)
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// StartMetrics serves /metrics until ctx is done.
func StartMetrics(ctx context.Context, cfg config.MonitoringConfig, logger *zerolog.Logger) {
	if !cfg.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.PrometheusPort
	if port == 0 {
		port = 9090
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}

func (a *App) Logger() *zerolog.Logger {
	return a.logger
}
