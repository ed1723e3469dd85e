package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// ErrStoreUnavailable is returned while the circuit breaker rejects calls.
var ErrStoreUnavailable = errors.New("product store unavailable")

// BreakerStore decorates a ProductStore with a circuit breaker.
// Domain outcomes (not found, already exists) and caller cancellation are not counted as failures.
type BreakerStore struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

var _ ProductStore = (*BreakerStore)(nil)

// NewBreakerStore wraps next in a circuit breaker configured from cfg.
func NewBreakerStore(next ProductStore, cfg config.CircuitBreakerConfig, logger *slog.Logger) *BreakerStore {
	st := gobreaker.Settings{
		Name:        "product-store-cb",
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// a zero error rate disables the rate check
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(cfg.ErrorRatePercent > 0 && counts.Requests >= cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.Requests)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](st),
	}
}

func isSuccessful(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, perrors.ErrProductNotFound),
		errors.Is(err, perrors.ErrProductAlreadyExists),
		errors.Is(err, context.Canceled):
		return true
	default:
		return false
	}
}

// execute runs fn through the breaker, translating rejections into ErrStoreUnavailable.
func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return zero, err
	}
	return res.(T), nil
}

func (b *BreakerStore) FindAll(ctx context.Context) ([]db.Product, error) {
	return execute(b.cb, func() ([]db.Product, error) { return b.next.FindAll(ctx) })
}

func (b *BreakerStore) FindByID(ctx context.Context, id int64) (*db.Product, error) {
	return execute(b.cb, func() (*db.Product, error) { return b.next.FindByID(ctx, id) })
}

func (b *BreakerStore) FindByName(ctx context.Context, name string) (*db.Product, error) {
	return execute(b.cb, func() (*db.Product, error) { return b.next.FindByName(ctx, name) })
}

func (b *BreakerStore) Save(ctx context.Context, product db.Product) (*db.Product, error) {
	return execute(b.cb, func() (*db.Product, error) { return b.next.Save(ctx, product) })
}

func (b *BreakerStore) DeleteByID(ctx context.Context, id int64) error {
	_, err := execute(b.cb, func() (struct{}, error) { return struct{}{}, b.next.DeleteByID(ctx, id) })
	return err
}

// Ping bypasses the breaker so readiness reflects the real store state.
func (b *BreakerStore) Ping(ctx context.Context) error {
	if p, ok := b.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}
