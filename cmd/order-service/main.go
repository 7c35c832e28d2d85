package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/OlegStrokan/free-ebay-sub000/internal/cart"
	"github.com/OlegStrokan/free-ebay-sub000/internal/checkout"
	sagasqlite "github.com/OlegStrokan/free-ebay-sub000/internal/checkout/sagalog/sqlite"
	"github.com/OlegStrokan/free-ebay-sub000/internal/command"
	"github.com/OlegStrokan/free-ebay-sub000/internal/config"
	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
	"github.com/OlegStrokan/free-ebay-sub000/internal/eventbus"
	"github.com/OlegStrokan/free-ebay-sub000/internal/httpapi"
	"github.com/OlegStrokan/free-ebay-sub000/internal/payment"
	"github.com/OlegStrokan/free-ebay-sub000/internal/projection"
	"github.com/OlegStrokan/free-ebay-sub000/internal/query"
	"github.com/OlegStrokan/free-ebay-sub000/internal/relay"
	"github.com/OlegStrokan/free-ebay-sub000/internal/storage/commandpg"
	"github.com/OlegStrokan/free-ebay-sub000/internal/storage/migrate"
	"github.com/OlegStrokan/free-ebay-sub000/internal/storage/querypg"
	"github.com/OlegStrokan/free-ebay-sub000/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := telemetry.NewLogger(slog.LevelInfo)

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	if err := migrate.CommandUp(cfg.CommandDSN); err != nil {
		logger.Error("command schema migration failed", "error", err)
		os.Exit(1)
	}
	if err := migrate.QueryUp(cfg.QueryDSN); err != nil {
		logger.Error("query schema migration failed", "error", err)
		os.Exit(1)
	}

	commandPool, err := dialPostgres(ctx, cfg.CommandDSN)
	if err != nil {
		logger.Error("command store unreachable", "error", err)
		os.Exit(1)
	}
	defer commandPool.Close()

	queryPool, err := dialPostgres(ctx, cfg.QueryDSN)
	if err != nil {
		logger.Error("query store unreachable", "error", err)
		os.Exit(1)
	}
	defer queryPool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := pingRedis(ctx, rdb); err != nil {
		logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	sagaLog, err := sagasqlite.Open(cfg.SagaLogPath)
	if err != nil {
		logger.Error("saga log unavailable", "path", cfg.SagaLogPath, "error", err)
		os.Exit(1)
	}
	defer sagaLog.Close()

	kafkaRelay := relay.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer kafkaRelay.Close()

	commandRepo := commandpg.NewRepository(commandPool)
	queryRepo := querypg.NewRepository(queryPool)

	// Projector registers before the relay so the read model absorbs an
	// event before it leaves the process.
	bus := eventbus.New(logger)
	projector := projection.NewOrderProjector(queryRepo, logger)
	projector.Register(bus)
	kafkaRelay.Register(bus)

	if cfg.RebuildLimit > 0 {
		if err := projector.Rebuild(ctx, commandRepo, cfg.RebuildLimit); err != nil {
			logger.Warn("read model rebuild failed", "error", err)
		}
	}

	grouping := order.OneParcelPerItem{}
	commands := httpapi.Commands{
		Create:   command.NewCreateOrderHandler(commandRepo, bus, grouping, logger),
		Ship:     command.NewShipOrderHandler(commandRepo, bus, logger),
		Cancel:   command.NewCancelOrderHandler(commandRepo, bus, logger),
		Deliver:  command.NewDeliverOrderHandler(commandRepo, bus, logger),
		Complete: command.NewCompleteOrderHandler(commandRepo, bus, logger),
	}

	carts := cart.NewStore(rdb)
	gateway := payment.NewClient(cfg.PaymentGatewayURL)
	checkoutSvc := checkout.NewService(
		commandRepo, carts, gateway, bus, grouping, sagaLog, cfg.PaymentTimeout, logger)
	queries := query.NewService(queryRepo, rdb, 30*time.Second, logger)

	handler := httpapi.NewHandler(commands, checkoutSvc, queries, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           otelhttp.NewHandler(httpapi.NewRouter(handler), "order-service"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// dialPostgres opens a pool and verifies connectivity, retrying with
// exponential backoff while the database comes up.
func dialPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	backoff := retry.WithMaxRetries(6, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	return pool, err
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	backoff := retry.WithMaxRetries(6, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
