package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightsurety/config"
	"github.com/Domenick1991/flightsurety/internal/bootstrap"
	"github.com/Domenick1991/flightsurety/internal/cache"
	"github.com/Domenick1991/flightsurety/internal/kafka"
	"github.com/Domenick1991/flightsurety/internal/logging"
	"github.com/Domenick1991/flightsurety/internal/metrics"
	"github.com/Domenick1991/flightsurety/internal/repository"
	"github.com/Domenick1991/flightsurety/internal/service/flights"
	"github.com/Domenick1991/flightsurety/internal/service/insurance"
	"github.com/Domenick1991/flightsurety/internal/surety"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	params, err := cfg.Surety.Params()
	if err != nil {
		logger.Fatal("invalid surety config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Surety.FlightsCacheWindow())
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		logger.Warn("kafka unavailable, events will not be published until it recovers", zap.Error(err))
	}

	eventRepo := repository.NewEventRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	payoutRepo := repository.NewPayoutRepository(pool)
	recorder := metrics.NewRecorder()

	engine, err := surety.New(params,
		surety.WithJournal(eventRepo),
		surety.WithPayer(payoutRepo),
		surety.WithNotifier(recorder),
		surety.WithLogger(logger.Named("surety")),
	)
	if err != nil {
		logger.Fatal("init engine", zap.Error(err))
	}

	journal, err := eventRepo.List(ctx)
	if err != nil {
		logger.Fatal("load journal", zap.Error(err))
	}
	if err := engine.Restore(journal); err != nil {
		logger.Fatal("restore engine", zap.Error(err))
	}
	recorder.SetEscrow(engine.Escrow())
	logger.Info("surety state loaded",
		zap.Int("events", len(journal)),
		zap.Uint64("seq", engine.Seq()),
		zap.String("escrow", engine.Escrow().String()),
	)

	flightService := flights.NewFlightService(flightRepo, redisCache)
	suretyService := insurance.NewService(
		engine,
		flightRepo,
		redisCache,
		producer,
		cfg.Kafka.EventsTopic,
		cfg.Surety.IdempotencyWindow(),
		insurance.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		insurance.WithLogger(logger.Named("insurance")),
	)

	if err := bootstrap.Run(ctx, cfg, logger, flightService, suretyService, recorder.Handler()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
