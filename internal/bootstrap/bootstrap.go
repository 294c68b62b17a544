package bootstrap

import (
	"context"

	"uow-coordinator/internal/config"
	httpserver "uow-coordinator/internal/infrastructure/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitAPI wires storage, idempotency and metrics into an HTTP server.
// The returned cleanup releases every connection that was opened.
func InitAPI(ctx context.Context, cfg config.Config) (*httpserver.Server, func(), error) {
	log := ProvideLogger()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := ProvideRecorder(reg)

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	rdb, closeRedis := ProvideRedisClient(cfg)
	cleanups = append(cleanups, closeRedis)

	var storage Storage
	switch cfg.Storage {
	case "pg":
		db, closeDB, err := ProvideDB(ctx, log, cfg)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		cleanups = append(cleanups, closeDB)
		storage = ProvidePGStorage(db, log, rec)
	case "redis":
		storage = ProvideRedisStorage(rdb, log, rec)
	default:
		cleanup()
		return nil, func() {}, unsupportedStorage(cfg.Storage)
	}

	svc := ProvideRecordService(storage, ProvideIdempotency(rdb, cfg), log)
	srv := httpserver.NewServer(svc,
		httpserver.WithPing(storage.Ping),
		httpserver.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	)
	return srv, cleanup, nil
}
