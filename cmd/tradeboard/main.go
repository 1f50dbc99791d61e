package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"

	"tradeboard/internal/app/bootstrap"
	"tradeboard/internal/app/middleware"
	appoutbox "tradeboard/internal/app/outbox"
	"tradeboard/internal/app/policies"
	"tradeboard/internal/app/uow"
	"tradeboard/internal/domain/availability"
	"tradeboard/internal/infra/broker/kafka"
	"tradeboard/internal/infra/config"
	mongodb "tradeboard/internal/infra/db/mongo"
	ginserver "tradeboard/internal/infra/http/gin"
	"tradeboard/internal/infra/obs"
	"tradeboard/internal/infra/outbox"
	"tradeboard/internal/infra/storage/memory"
	"tradeboard/internal/infra/storage/s3"
	"tradeboard/internal/infra/validation"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if err := runApp(cfg, logger); err != nil {
		logger.Error("tradeboard stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("tradeboard stopped")
}

type storage struct {
	factory     uow.UoWFactory
	calendars   availability.Repository
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	events      *outbox.Store
	checks      map[string]func() error
	close       func(context.Context) error
}

func runApp(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()
	metrics := obs.NewMetrics()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			logger.Warn("storage close failed", "error", err)
		}
	}()

	deps := bootstrap.Dependencies{
		UoWFactory:  store.factory,
		Calendars:   store.calendars,
		Outbox:      store.outbox,
		Idempotency: store.idempotency,
		Validator:   validation.New(),
		Payments:    memory.NewPayments(logger.With("component", "payments")),
		Metrics:     metrics,
		Policy:      cfg.TransitionPolicy,
		LockWait:    cfg.ReservationLockWait,
		Logger:      logger,
	}
	if media, err := openMedia(cfg, logger); err != nil {
		return err
	} else if media != nil {
		deps.Media = media
	}

	app, err := bootstrap.Build(deps)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty; every bearer token will be rejected")
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger, Metrics: metrics}, obs.HealthHandlers{
		Checks: store.checks,
	}, ginserver.Handlers{
		Announcements:  ginserver.AnnouncementHandler{Commands: app.Commands, Queries: app.Queries, DefaultCurrency: cfg.DefaultCurrency},
		Calendar:       ginserver.CalendarHandler{Commands: app.Commands, Queries: app.Queries},
		Transactions:   ginserver.TransactionHandler{Commands: app.Commands, Queries: app.Queries},
		AuthMiddleware: ginserver.AuthMiddleware{Secret: []byte(cfg.JWTSecret), Logger: logger}.Handle,
		Metrics:        metrics.Handler(),
	})

	var g run.Group
	g.Add(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	})

	if store.events != nil && len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer producer.Close()
		worker := &outbox.Worker{
			Store:       store.events,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger.With("component", "outbox"),
		}
		workerCtx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			logger.Info("outbox worker starting", "brokers", cfg.KafkaBrokers)
			if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}, func(error) {
			cancel()
		})
	} else if store.events != nil {
		logger.Warn("KAFKA_BROKERS not set; outbox records stay queued")
	}

	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var signalErr run.SignalError
	if errors.As(err, &signalErr) {
		logger.Info("shutdown requested", "signal", signalErr.Signal.String())
		return nil
	}
	return err
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	switch cfg.Storage {
	case config.StorageMongo:
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storage{}, err
		}
		if err := mongodb.EnsureIndexes(ctx, client.DB); err != nil {
			_ = client.Close(ctx)
			return storage{}, err
		}
		idem, err := mongodb.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			_ = client.Close(ctx)
			return storage{}, err
		}
		events, err := outbox.NewStore(ctx, client.DB)
		if err != nil {
			_ = client.Close(ctx)
			return storage{}, err
		}
		factory := mongodb.NewFactory(client.DB)
		logger.Info("mongo storage connected", "database", cfg.MongoDB)
		return storage{
			factory:     factory,
			calendars:   factory.CalendarsRepo,
			outbox:      events,
			idempotency: idem,
			events:      events,
			checks: map[string]func() error{
				"mongo": func() error {
					pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					return client.Ping(pingCtx)
				},
			},
			close: client.Close,
		}, nil
	default:
		factory := memory.NewFactory()
		logger.Info("in-memory storage selected; data is lost on restart")
		return storage{
			factory:     factory,
			calendars:   factory.CalendarsRepo,
			outbox:      memory.NewOutbox(logger.With("component", "events")),
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			close:       func(context.Context) error { return nil },
		}, nil
	}
}

// openMedia returns nil when no object store is configured.
func openMedia(cfg config.Config, logger *slog.Logger) (policies.MediaStore, error) {
	if cfg.S3Endpoint == "" {
		return nil, nil
	}
	store, err := s3.NewMediaStore(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, logger.With("component", "media"))
	if err != nil {
		return nil, err
	}
	return store, nil
}
