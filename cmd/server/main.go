package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"turfbook/internal/api"
	"turfbook/internal/booking"
	"turfbook/internal/config"
	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/export"
	"turfbook/internal/logging"
	"turfbook/internal/metrics"
	"turfbook/internal/models"
	"turfbook/internal/pricing"
	"turfbook/internal/session"
	"turfbook/internal/storage"
	"turfbook/internal/store"
	"turfbook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	yamlv2 "gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	turfsPath := flag.String("turfs", "configs/turfs.yaml", "path to turf catalogue")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	if err := loadTurfCatalogue(*turfsPath, cfg, logger); err != nil {
		return err
	}

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Snapshot backend. JSON is the canonical layout; sqlite is opt-in.
	var snapshot domain.Snapshot
	switch cfg.Storage.Backend {
	case "sqlite":
		snapshot, err = storage.NewSQLiteSnapshot(filepath.Join(cfg.Storage.Path, cfg.Storage.Key+".db"))
	default:
		snapshot, err = storage.NewJSONSnapshot(cfg.Storage.Path, cfg.Storage.Key)
	}
	if err != nil {
		return fmt.Errorf("init snapshot: %w", err)
	}
	defer snapshot.Close()

	retry := worker.RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2,
	}

	st, err := store.Open(ctx, snapshot, retry, logging.Component(logger, "store"))
	if err != nil {
		return err
	}

	// Selection state: redis with in-memory failover when configured,
	// plain in-memory otherwise.
	memoryRepo := session.NewMemorySelectionRepository()
	var selectionRepo domain.SelectionRepository = memoryRepo
	if cfg.Redis.Address != "" {
		client := session.NewRedisClient(cfg.Redis)
		if err := session.Ping(ctx, client); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable at startup, selection state starts on memory fallback")
		}
		redisRepo := session.NewRedisSelectionRepository(client, time.Duration(cfg.Session.TTLSeconds)*time.Second)
		selectionRepo = session.NewFailoverSelectionRepository(redisRepo, memoryRepo, logger)
		defer client.Close()
	}
	selections := session.NewSelectionService(selectionRepo, logging.Component(logger, "session"))

	calc := pricing.NewCalculator(cfg.Rates(), cfg.Pricing.PeakMultiplier, cfg.CouponTable())

	eventBus := events.NewEventBus()
	subscribeEventLog(eventBus, logger)

	venue := models.Venue{
		OpenHour:    cfg.Venue.OpenHour,
		CloseHour:   cfg.Venue.CloseHour,
		MaxDuration: cfg.Venue.MaxDuration,
	}
	bookings := booking.NewService(st, calc, selections, eventBus, venue, logging.Component(logger, "booking"))
	exporter := export.NewExporter(st, cfg.Exports, logging.Component(logger, "export"))

	if cfg.Monitoring.PrometheusEnabled {
		go servePrometheus(cfg.Monitoring.PrometheusPort, logger)
	}

	if !cfg.API.Enabled {
		logger.Info().Msg("API disabled, nothing to serve")
		<-ctx.Done()
		return nil
	}

	httpServer := api.NewHTTPServer(cfg.API, bookings, selections, st, exporter, logging.Component(logger, "api"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// loadTurfCatalogue merges an optional standalone turf rate file into the
// pricing config, overriding any turfs listed in the main config.
func loadTurfCatalogue(path string, cfg *config.Config, logger *zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read turf catalogue: %w", err)
	}

	var catalogue struct {
		Turfs []config.TurfRate `yaml:"turfs"`
	}
	if err := yamlv2.Unmarshal(data, &catalogue); err != nil {
		return fmt.Errorf("parse turf catalogue: %w", err)
	}
	if err := config.ValidateTurfs(catalogue.Turfs); err != nil {
		return fmt.Errorf("turf catalogue: %w", err)
	}

	if len(catalogue.Turfs) > 0 {
		cfg.Pricing.Turfs = catalogue.Turfs
		logger.Info().Int("turfs", len(catalogue.Turfs)).Str("path", path).Msg("turf catalogue loaded")
	}
	return nil
}

func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	audit := logging.Component(logger, "events")
	handler := func(event *events.Event) error {
		audit.Info().Str("type", event.Type).RawJSON("payload", event.Payload).Msg("booking event")
		return nil
	}
	bus.Subscribe(events.EventBookingCommitted, handler)
	bus.Subscribe(events.EventBookingCancelled, handler)
	bus.Subscribe(events.EventCommitRejected, handler)
}

func servePrometheus(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
