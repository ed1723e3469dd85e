// Package app wires the product service: store, service, HTTP routes and the gRPC server.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/internal/store"
	grpcImpl "github.com/abgdnv/productcatalog/internal/transport/grpc"
	"github.com/abgdnv/productcatalog/internal/transport/rest"
	pkgconfig "github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/grpc"
)

const (
	httpServerName      = "product-service"
	healthCheckInterval = 5 * time.Second
)

var errNoDbPool = errors.New("postgres store driver requires a database pool")

// Options carries the optional collaborators built by the entry point.
type Options struct {
	DbPool         *pgxpool.Pool       // required by the postgres store driver
	Publisher      messaging.Publisher // nil disables product events
	Meter          metric.Meter        // nil records nothing
	MetricsHandler http.Handler        // served on /metrics when set
}

type Dependencies struct {
	ProductService service.ProductService
	Store          store.ProductStore
	Health         *grpcImpl.HealthServer
	MetricsHandler http.Handler
	Logger         *slog.Logger

	pinger store.Pinger
}

// SetupDependencies selects the product store from cfg and builds the service on top of it.
func SetupDependencies(cfg *config.Config, opts Options, logger *slog.Logger) (*Dependencies, error) {
	productStore, pinger, err := newStore(cfg, opts.DbPool, logger)
	if err != nil {
		return nil, err
	}

	meter := opts.Meter
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(httpServerName)
	}
	pService, err := service.NewService(productStore, opts.Publisher, meter, logger)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		ProductService: pService,
		Store:          productStore,
		Health:         grpcImpl.NewHealthServer(pinger, healthCheckInterval, logger),
		MetricsHandler: opts.MetricsHandler,
		Logger:         logger,
		pinger:         pinger,
	}, nil
}

func newStore(cfg *config.Config, dbPool *pgxpool.Pool, logger *slog.Logger) (store.ProductStore, store.Pinger, error) {
	var productStore interface {
		store.ProductStore
		store.Pinger
	}
	switch cfg.Store.Driver {
	case pkgconfig.StoreDriverMemory:
		logger.Warn("Using in-memory product store, data is not persisted")
		productStore = store.NewInMemoryStore()
	case pkgconfig.StoreDriverPostgres, "":
		if dbPool == nil {
			return nil, nil, errNoDbPool
		}
		productStore = store.NewPgStore(dbPool)
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cb := cfg.Resilience.CircuitBreaker; cb.Enabled() {
		breaker := store.NewBreakerStore(productStore, cb, logger)
		return breaker, breaker, nil
	}
	return productStore, productStore, nil
}

// SetupHttpHandler builds the traced HTTP handler with all product routes.
// Used by end-to-end tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, httpServerName)
}

// wireRoutes sets up the HTTP routes for the product service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.pinger, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, deps.Health.Register)
}
