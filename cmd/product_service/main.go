// Package main runs the product catalog service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/productcatalog/internal/app"
	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	natsclient "github.com/abgdnv/productcatalog/pkg/nats"
	"github.com/abgdnv/productcatalog/pkg/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const serviceName = "product"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, builds the collaborators and serves HTTP, gRPC and pprof until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer shutdownWithTimeout(logger, "tracer provider", cfg.Shutdown.Timeout, tp.Shutdown)
	}

	metrics, err := telemetry.NewMetrics(serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer shutdownWithTimeout(logger, "meter provider", cfg.Shutdown.Timeout, metrics.Provider.Shutdown)

	opts := app.Options{
		Meter:          metrics.Provider.Meter(serviceName),
		MetricsHandler: metrics.Handler,
	}

	if cfg.Store.Driver == pkgconfig.StoreDriverPostgres {
		pool, err := connectDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		opts.DbPool = pool
	}

	if cfg.Nats.Enabled {
		publisher, closeNats, err := newPublisher(ctx, cfg.Nats)
		if err != nil {
			return err
		}
		defer closeNats()
		logger.Info("Publishing product events to NATS", "stream", cfg.Nats.Stream)
		opts.Publisher = publisher
	}

	deps, err := app.SetupDependencies(cfg, opts, logger)
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	pprofServer := &http.Server{
		Addr:              cfg.PProf.Addr,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
	}

	g, gCtx := errgroup.WithContext(ctx)
	serveHTTP(gCtx, g, logger, "HTTP", httpServer, cfg.Shutdown.Timeout)
	g.Go(func() error {
		return deps.Health.Run(gCtx)
	})
	serveGRPC(gCtx, g, logger, grpcServer, ":"+cfg.GRPC.Port, cfg.Shutdown.Timeout)
	if cfg.PProf.Enabled {
		serveHTTP(gCtx, g, logger, "pprof", pprofServer, cfg.Shutdown.Timeout)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// serveHTTP runs srv in g and shuts it down once ctx is done.
func serveHTTP(ctx context.Context, g *errgroup.Group, logger *slog.Logger, name string, srv *http.Server, timeout time.Duration) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down " + name + " server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// serveGRPC runs srv on addr in g. On ctx cancellation it stops gracefully, forcing a stop after timeout.
func serveGRPC(ctx context.Context, g *errgroup.Group, logger *slog.Logger, srv *grpc.Server, addr string, timeout time.Duration) {
	g.Go(func() error {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC address %s: %w", addr, err)
		}
		logger.Info("gRPC server listening", slog.String("addr", addr))
		return srv.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped")
			return nil
		case <-timer.C:
			logger.Warn("gRPC graceful stop timed out, forcing stop")
			srv.Stop()
			return errors.New("grpc server graceful stop timed out")
		}
	})
}

// newPublisher connects to NATS, makes sure the product events stream exists and returns a publisher for it.
func newPublisher(ctx context.Context, cfg pkgconfig.NATSConfig) (messaging.Publisher, func(), error) {
	nc, err := natsclient.NewClient(cfg.Url, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := natsclient.EnsureStream(streamCtx, js, cfg.Stream, messaging.ProductsSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	return natsclient.NewNatsPublisher(js), func() { _ = nc.Drain() }, nil
}

// connectDatabase applies pending migrations when enabled and opens the connection pool.
func connectDatabase(ctx context.Context, cfg pkgconfig.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if cfg.Migrate {
		if err := store.Migrate(cfg.URL); err != nil {
			return nil, err
		}
		logger.Info("Database migrations applied")
	}
	pool, err := bootstrap.NewDbPool(ctx, cfg.URL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Connected to the database", slog.String("url", pkgconfig.MaskURL(cfg.URL)))
	return pool, nil
}

func shutdownWithTimeout(logger *slog.Logger, name string, timeout time.Duration, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("Failed to shut down "+name, "error", err)
	}
}
