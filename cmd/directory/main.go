package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/directory/internal/directory/config"
	"github.com/gartstein/directory/internal/directory/controller"
	"github.com/gartstein/directory/internal/directory/db"
	"github.com/gartstein/directory/internal/directory/events"
	"github.com/gartstein/directory/internal/directory/handlers"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// eventProducer is satisfied by both the Kafka producer and the no-op one.
type eventProducer interface {
	controller.EventProducer
	Close()
}

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		err := logger.Sync()
		if err != nil {
			logger.Error("failed to sync logger", zap.Error(err))
		}
	}(logger)

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := connectDatabase(cfg.DB(), logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}()

	producer := initProducer(cfg, logger)
	defer producer.Close()

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	loader := controller.NewLoader(repo, cfg.LoadTimeout, logger)
	directorySvc := controller.NewDirectoryService(loader, producer, server, logger)

	if err := server.RegisterHTTPGateway(
		context.Background(),
		[]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
		handlers.NewDirectoryHandler(directorySvc, logger)); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A failed first load leaves the service up and retryable.
	if err := directorySvc.Reload(ctx); err != nil {
		logger.Warn("Initial load failed", zap.Error(err))
	}

	if cfg.KafkaEnabled() {
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.RefreshGroup, cfg.RefreshTopic, logger)
		consumer.RegisterHandler(func(ctx context.Context, _ kafka.Message) error {
			return directorySvc.Reload(ctx)
		})
		consumer.Start(ctx)
		defer consumer.Close()
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, cancel, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// connectDatabase opens the record store, retrying while the database
// comes up.
func connectDatabase(cfg *db.Config, logger *zap.Logger) (*db.Repository, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Minute

	var repo *db.Repository
	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = db.NewRepository(cfg)
		return err
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("Database not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
	return repo, err
}

// initProducer falls back to a no-op producer when Kafka is not configured
// or unreachable.
func initProducer(cfg *config.Config, logger *zap.Logger) eventProducer {
	if !cfg.KafkaEnabled() {
		logger.Info("No Kafka brokers configured, events disabled")
		return events.NopProducer{}
	}
	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		logger.Warn("Failed to initialize Kafka producer, events disabled", zap.Error(err))
		return events.NopProducer{}
	}
	return producer
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, cancel context.CancelFunc, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()
	server.Stop()
	logger.Info("Servers stopped properly")
}
