package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"cabanas/internal/config"
	"cabanas/internal/domain"
	"cabanas/internal/logging"
	"cabanas/internal/report"
	"cabanas/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	now := time.Now()
	year := flag.Int("year", now.Year(), "report year")
	month := flag.Int("month", int(now.Month()), "report month (1-12)")
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH or configs/config.yaml)")
	output := flag.String("output", "", "output file path (defaults to exports dir from config)")
	flag.Parse()

	if *month < 1 || *month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", *month)
	}

	cfg, logger, closer, err := loadConfigAndLogger(*configPath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	persister, cleanup, err := openPersister(cfg, &logger)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	ctx := context.Background()
	bookings, _, err := persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}

	file, err := report.Monthly(*year, time.Month(*month), bookings)
	if err != nil {
		if errors.Is(err, report.ErrNoBookings) {
			logger.Info().Int("year", *year).Int("month", *month).Msg("no bookings in period, nothing to export")
			return nil
		}
		return fmt.Errorf("build report: %w", err)
	}

	outPath := *output
	if outPath == "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			return fmt.Errorf("create exports dir: %w", err)
		}
		outPath = filepath.Join(cfg.Exports.Path, report.Filename(*year, time.Month(*month)))
	}

	if err := file.SaveAs(outPath); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	logger.Info().Str("path", outPath).Msg("report exported")
	fmt.Println(outPath)
	return nil
}

func loadConfigAndLogger(configPath string) (*config.Config, zerolog.Logger, io.Closer, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
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
	logger := baseLogger.With().Str("component", "export").Logger()

	return cfg, logger, closer, nil
}

func openPersister(cfg *config.Config, logger *zerolog.Logger) (domain.Persister, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		client := storage.NewRedisClient(cfg.Storage.Redis.Address, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		if err := storage.Ping(context.Background(), client); err != nil {
			logger.Error().Err(err).Msg("redis connection failed")
			return nil, nil, err
		}
		return storage.NewRedis(client), func() { _ = client.Close() }, nil
	case "memory":
		return storage.NewMemory(), nil, nil
	default:
		db, err := storage.NewSQLite(cfg.Storage.Path, logger)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Storage.Path).Msg("open database")
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	}
}
