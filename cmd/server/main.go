package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cabanas/internal/api"
	"cabanas/internal/config"
	"cabanas/internal/domain"
	"cabanas/internal/events"
	"cabanas/internal/logging"
	"cabanas/internal/metrics"
	"cabanas/internal/models"
	"cabanas/internal/notify"
	"cabanas/internal/service"
	"cabanas/internal/storage"
	"cabanas/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	cabins, err := loadExtraCabins(cfg, &logger)
	if err != nil {
		return err
	}

	persister, cleanup, err := initPersister(cfg, &logger)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	notifier := initNotifier(cfg, &logger)
	eventBus := events.NewEventBus()
	subscribeAuditLog(eventBus, &logger)

	bookingStore := store.New(persister, &logger)
	var seed domain.SeedSource
	if cfg.Seed.Path != "" {
		seed = storage.NewFileSeed(cfg.Seed.Path)
	}
	svc := service.NewBookingService(bookingStore, eventBus, notifier, seed, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.LoadOrSeed(ctx); err != nil {
		logger.Error().Err(err).Msg("load bookings")
		return err
	}

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.HTTP, svc, cabins, &logger)
	return serveUntilSignal(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "server").Logger()

	return cfg, logger, closer, nil
}

// loadExtraCabins merges an optional standalone cabins file over the cabins
// declared in the main config, so the unit list can be swapped without
// touching the rest of the configuration.
func loadExtraCabins(cfg *config.Config, logger *zerolog.Logger) ([]string, error) {
	cabinsPath := os.Getenv("CABINS_PATH")
	if cabinsPath == "" {
		return cfg.CabinNames(), nil
	}

	data, err := os.ReadFile(cabinsPath)
	if err != nil {
		logger.Error().Err(err).Str("cabins_path", cabinsPath).Msg("read cabins")
		return nil, err
	}

	var cabinsConfig struct {
		Cabins []models.Cabin `yaml:"cabins"`
	}
	if err := yaml.Unmarshal(data, &cabinsConfig); err != nil {
		logger.Error().Err(err).Str("cabins_path", cabinsPath).Msg("parse cabins")
		return nil, err
	}
	if err := config.ValidateCabins(cabinsConfig.Cabins); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cabinsConfig.Cabins))
	for _, cabin := range cabinsConfig.Cabins {
		names = append(names, cabin.Name)
	}
	return names, nil
}

func initPersister(cfg *config.Config, logger *zerolog.Logger) (domain.Persister, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		client := storage.NewRedisClient(cfg.Storage.Redis.Address, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		if err := storage.Ping(context.Background(), client); err != nil {
			logger.Error().Err(err).Msg("redis connection failed")
			return nil, nil, err
		}
		logger.Info().Str("addr", cfg.Storage.Redis.Address).Msg("redis connected")
		primary := storage.NewRedis(client)
		persister := storage.NewFailover(primary, storage.NewMemory(), logger)
		return persister, func() { _ = client.Close() }, nil
	case "memory":
		return storage.NewMemory(), nil, nil
	default:
		db, err := storage.NewSQLite(cfg.Storage.Path, logger)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Storage.Path).Msg("init database")
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	}
}

// subscribeAuditLog records every booking mutation in the structured log.
func subscribeAuditLog(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingUpdated,
		events.EventBookingDeleted,
		events.EventBackupRestored,
		events.EventSeedLoaded,
	} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			logger.Info().
				Str("event", event.Type).
				RawJSON("payload", event.Payload).
				Msg("audit")
			return nil
		})
	}
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) domain.Notifier {
	if !cfg.Telegram.Enabled {
		return notify.Nop{}
	}

	notifier, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return notify.Nop{}
	}
	logger.Info().Msg("telegram notifications enabled")
	return notifier
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	go startMetricsServer(ctx, port, logger)
}

func serveUntilSignal(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
