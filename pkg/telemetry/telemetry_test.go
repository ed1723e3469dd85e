package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_ExposesCounters(t *testing.T) {
	// given
	m, err := NewMetrics("product-test")
	require.NoError(t, err)
	defer func() { _ = m.Provider.Shutdown(context.Background()) }()

	counter, err := m.Provider.Meter("test").Int64Counter("products_created")
	require.NoError(t, err)

	// when
	counter.Add(context.Background(), 3)
	rr := httptest.NewRecorder()
	m.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "products_created_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	first, err := NewMetrics("a")
	require.NoError(t, err)
	second, err := NewMetrics("b")
	require.NoError(t, err)
	assert.NotSame(t, first.Provider, second.Provider)
}
