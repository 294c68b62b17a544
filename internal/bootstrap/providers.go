package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"uow-coordinator/internal/application"
	"uow-coordinator/internal/config"
	infraconfig "uow-coordinator/internal/infrastructure/config"
	"uow-coordinator/internal/infrastructure/logx"
	"uow-coordinator/internal/infrastructure/metrics"
	"uow-coordinator/internal/infrastructure/pg"
	redisstore "uow-coordinator/internal/infrastructure/redis"
	"uow-coordinator/internal/uow"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")

// Storage bundles what the record service needs from one backend.
type Storage struct {
	NewWriter func() application.RecordWriter
	Reader    application.RecordReader
	Ping      func(ctx context.Context) error
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideRecorder(reg prometheus.Registerer) uow.Recorder { return metrics.NewUowRecorder(reg) }

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideRedisClient(cfg config.Config) (*redis.Client, func()) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }
}

func ProvidePGStorage(db *pg.DB, log *zap.Logger, rec uow.Recorder) Storage {
	backend := pg.NewBackend(db, pgx.TxOptions{})
	return Storage{
		NewWriter: func() application.RecordWriter {
			u := uow.New[pgx.Tx](backend, uow.WithLogger(log), uow.WithRecorder(rec), uow.WithName("records_pg"))
			return application.NewRecordRepository[pgx.Tx](u, pg.NewRecordEntity)
		},
		Reader: pg.NewRecordStore(db),
		Ping:   db.Ping,
	}
}

func ProvideRedisStorage(client redis.UniversalClient, log *zap.Logger, rec uow.Recorder) Storage {
	keys := redisstore.Keys{Prefix: infraconfig.DefaultRecordKeyPrefix}
	backend := redisstore.NewBackend(client)
	factory := redisstore.NewRecordFactory(keys)
	return Storage{
		NewWriter: func() application.RecordWriter {
			u := uow.New[*redisstore.Tx](backend, uow.WithLogger(log), uow.WithRecorder(rec), uow.WithName("records_redis"))
			return application.NewRecordRepository[*redisstore.Tx](u, factory)
		},
		Reader: redisstore.NewRecordStore(client, keys),
		Ping:   func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}

func ProvideIdempotency(client redis.UniversalClient, cfg config.Config) application.IdempotencyStore {
	if cfg.IdempotencyBackend != "redis" {
		return redisstore.NoopIdempotency{}
	}
	return redisstore.New(client, cfg.IdempotencyTTL)
}

func ProvideRecordService(s Storage, idem application.IdempotencyStore, log *zap.Logger) *application.RecordService {
	return application.NewRecordService(s.NewWriter, s.Reader,
		application.WithIdempotency(idem),
		application.WithLogger(log),
	)
}

func unsupportedStorage(name string) error {
	return fmt.Errorf("unsupported STORAGE=%q (want pg or redis)", name)
}
