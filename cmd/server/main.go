package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"prenota/internal/api"
	"prenota/internal/availability"
	"prenota/internal/booking"
	"prenota/internal/config"
	"prenota/internal/database"
	"prenota/internal/events"
	"prenota/internal/lock"
	"prenota/internal/metrics"
	"prenota/internal/model"
	"prenota/internal/settings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load(os.Getenv("PRENOTA_CONFIG_PATH"))
	if err != nil {
		fallback := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	logger := newLogger(cfg)

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	defaults := config.DefaultSettings()
	if cfg.Settings.Path != "" {
		if fileSettings, err := config.LoadSettings(cfg.Settings.Path); err == nil {
			defaults = fileSettings
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Fatal().Err(err).Str("path", cfg.Settings.Path).Msg("invalid settings file")
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Lock.Backend == config.LockBackendRedis {
		locker = lock.NewRedisLocker(rdb, cfg.Lock.Prefix, cfg.LockTTL(), &logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(&logger)
	subscribeAudit(bus, &logger)

	store := settings.NewStore(db, defaults, bus, cfg.SettingsCacheTTL(), &logger)
	if _, err := store.Settings(ctx); err != nil {
		logger.Fatal().Err(err).Msg("load settings error")
	}
	if cfg.Settings.Watch {
		if err := config.WatchSettings(ctx, cfg.Settings.Path, cfg.SettingsWatchInterval(), &logger, store.Apply(ctx)); err != nil {
			logger.Fatal().Err(err).Msg("watch settings error")
		}
	}

	engine := availability.NewService(&logger)
	bookings := booking.NewService(db, store, engine, locker, bus, &logger)

	backup := database.NewBackupService(db, database.BackupOptions{
		Enabled:       cfg.Backup.Enabled,
		Interval:      cfg.BackupInterval(),
		Dir:           cfg.Backup.Path,
		RetentionDays: cfg.Backup.RetentionDays,
	}, &logger)
	go backup.Start(ctx)

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewHTTPServer(api.Options{
		Port:               cfg.Server.Port,
		RateLimitPerSecond: cfg.API.RateLimitPerSecond,
		RateLimitBurst:     cfg.API.RateLimitBurst,
	}, bookings, store, db, &logger)

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("api shutdown error")
		}
	}()

	logger.Info().Int("port", cfg.Server.Port).Str("lock", cfg.Lock.Backend).Msg("Reservation service started")
	if err := server.Start(); err != nil {
		logger.Error().Err(err).Msg("api server error")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Logging.Format == "json" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// subscribeAudit writes every booking lifecycle event to the log.
func subscribeAudit(bus *events.Bus, logger *zerolog.Logger) {
	audit := logger.With().Str("component", "audit").Logger()
	for _, eventType := range []string{events.BookingCreated, events.BookingConfirmed, events.BookingDeclined} {
		bus.Subscribe(eventType, func(e events.Event) error {
			var b model.Booking
			if err := e.Decode(&b); err != nil {
				return err
			}
			audit.Info().
				Str("event", e.Type).
				Str("booking_id", b.ID).
				Str("date", b.Date).
				Str("time", b.Time).
				Int("party_size", b.PartySize()).
				Strs("tables", b.AssignedTableIDs).
				Msg("Booking event")
			return nil
		})
	}
	bus.Subscribe(events.SettingsUpdated, func(e events.Event) error {
		audit.Info().Str("event", e.Type).Int("bytes", len(e.Payload)).Msg("Settings event")
		return nil
	})
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
