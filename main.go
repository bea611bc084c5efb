package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apppay "github.com/locksmith-pay/locksmith/internal/application/payment"
	dompay "github.com/locksmith-pay/locksmith/internal/domain/payment"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/cache/rediscache"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/gateway/mockgateway"
	httptransport "github.com/locksmith-pay/locksmith/internal/infrastructure/http"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/lock/memlock"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/lock/redislock"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/memory"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/observability/oteltrace"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/observability/prometrics"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/observability/zaplogger"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/outbox"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/payment/worker"
	"github.com/locksmith-pay/locksmith/internal/infrastructure/persistence/gormrepo"
	"github.com/locksmith-pay/locksmith/internal/lock"
	"github.com/locksmith-pay/locksmith/internal/pkg/config"
	"github.com/locksmith-pay/locksmith/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger := logging.MustNewLogger(cfg.Service, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	logger := zaplogger.New(baseLogger)
	tracer := oteltrace.New(cfg.Service)
	metrics := prometrics.New(cfg.Service, "payment")

	requests := metrics.Counter("usecase_requests_total",
		"Total number of use case invocations.", "use_case", "outcome")
	durations := metrics.Histogram("usecase_duration_seconds",
		"Duration of use case execution in seconds.", nil, "use_case")
	eventOutcomes := metrics.Counter("payment_events_total",
		"Count of payment lifecycle events consumed.", "event", "status")

	var repo dompay.Repository
	if cfg.PostgresDSN != "" {
		sqlRepo, err := gormrepo.Open(cfg.PostgresDSN)
		if err != nil {
			baseLogger.Fatal("postgres_open_error", zap.Error(err))
		}
		repo = sqlRepo
	} else {
		repo = memory.NewPaymentRepository()
	}

	var (
		locks lock.Manager
		cache apppay.Cache
	)
	if cfg.RedisAddr != "" {
		client := goredislib.NewClient(&goredislib.Options{Addr: cfg.RedisAddr})
		defer func() { _ = client.Close() }()
		locks = redislock.New(client, logger)
		cache = rediscache.New(client, cfg.CacheTTL, logger)
	} else {
		locks = memlock.New()
	}

	bus := outbox.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop()

	paymentWorker := worker.New(bus, logger, eventOutcomes)
	paymentWorker.Start()

	gateway := mockgateway.New(logger)

	opts := []apppay.Option{
		apppay.WithLockOptions(lock.Options{Wait: cfg.LockWait, Lease: cfg.LockLease}),
		apppay.WithPublisher(bus),
		apppay.WithObservability(logger, tracer, requests, durations),
	}
	if cache != nil {
		opts = append(opts, apppay.WithCache(cache))
	}
	payments := apppay.NewService(repo, gateway, locks, opts...)

	handler := httptransport.NewHandler(payments)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		baseLogger.Info("http_server_stopped")
	}
}
