package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/messaging/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) FindAll(ctx context.Context) ([]db.Product, error) {
	args := m.Called(ctx)
	var products []db.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]db.Product)
	}
	return products, args.Error(1)
}

func (m *MockProductStore) FindByID(ctx context.Context, id int64) (*db.Product, error) {
	args := m.Called(ctx, id)
	var product *db.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*db.Product)
	}
	return product, args.Error(1)
}

func (m *MockProductStore) FindByName(ctx context.Context, name string) (*db.Product, error) {
	args := m.Called(ctx, name)
	var product *db.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*db.Product)
	}
	return product, args.Error(1)
}

func (m *MockProductStore) Save(ctx context.Context, product db.Product) (*db.Product, error) {
	args := m.Called(ctx, product)
	var saved *db.Product
	if args.Get(0) != nil {
		saved = args.Get(0).(*db.Product)
	}
	return saved, args.Error(1)
}

func (m *MockProductStore) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingPublisher keeps every published event and returns err.
type recordingPublisher struct {
	events []messaging.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func newTestService(t *testing.T, repo store.ProductStore, pub messaging.Publisher) *Service {
	t.Helper()
	svc, err := NewService(repo, pub, noop.NewMeterProvider().Meter("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return svc
}

func Test_ProductService_List(t *testing.T) {
	errStore := errors.New("store error")
	testCases := []struct {
		name        string
		products    []db.Product
		storeErr    error
		expected    []ProductDto
		expectError error
	}{
		{
			name:     "Success - products found",
			products: []db.Product{{ID: 1, Name: "Widget", Price: 10}, {ID: 2, Name: "Gadget", Price: 5}},
			expected: []ProductDto{{ID: 1, Name: "Widget", Price: 10}, {ID: 2, Name: "Gadget", Price: 5}},
		},
		{
			name:     "Success - no products",
			products: []db.Product{},
			expected: []ProductDto{},
		},
		{
			name:        "Error - store failure",
			storeErr:    errStore,
			expectError: errStore,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			repo := new(MockProductStore)
			repo.On("FindAll", mock.Anything).Return(tc.products, tc.storeErr)
			svc := newTestService(t, repo, nil)

			// when
			list, err := svc.List(context.Background())

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, list)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, list)
			assert.Equal(t, tc.expected, list)
			repo.AssertExpectations(t)
		})
	}
}

func Test_ProductService_GetByID(t *testing.T) {
	testCases := []struct {
		name        string
		product     *db.Product
		storeErr    error
		expected    *ProductDto
		expectError error
	}{
		{
			name:     "Success - product found",
			product:  &db.Product{ID: 1, Name: "Widget", Price: 10},
			expected: &ProductDto{ID: 1, Name: "Widget", Price: 10},
		},
		{
			name:        "Error - product not found",
			storeErr:    perrors.ErrProductNotFound,
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			repo := new(MockProductStore)
			repo.On("FindByID", mock.Anything, int64(1)).Return(tc.product, tc.storeErr)
			svc := newTestService(t, repo, nil)

			// when
			found, err := svc.GetByID(context.Background(), 1)

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_Create(t *testing.T) {
	errStore := errors.New("store error")
	input := ProductInput{Name: "Widget", Price: 10}

	t.Run("Success - new name is saved", func(t *testing.T) {
		// given
		repo := new(MockProductStore)
		pub := &recordingPublisher{}
		repo.On("FindByName", mock.Anything, "Widget").Return(nil, perrors.ErrProductNotFound)
		repo.On("Save", mock.Anything, db.Product{Name: "Widget", Price: 10}).
			Return(&db.Product{ID: 1, Name: "Widget", Price: 10}, nil)
		svc := newTestService(t, repo, pub)

		// when
		created, err := svc.Create(context.Background(), input)

		// then
		require.NoError(t, err)
		assert.Equal(t, &ProductDto{ID: 1, Name: "Widget", Price: 10}, created)
		require.Len(t, pub.events, 1)
		assert.Equal(t, messaging.ProductCreatedSubject, pub.events[0].Subject())
		repo.AssertExpectations(t)
	})

	t.Run("Error - name exists, nothing saved", func(t *testing.T) {
		// given
		repo := new(MockProductStore)
		pub := &recordingPublisher{}
		repo.On("FindByName", mock.Anything, "Widget").Return(&db.Product{ID: 1, Name: "Widget", Price: 10}, nil)
		svc := newTestService(t, repo, pub)

		// when
		created, err := svc.Create(context.Background(), ProductInput{Name: "Widget", Price: 5})

		// then
		assert.ErrorIs(t, err, perrors.ErrProductAlreadyExists)
		assert.Nil(t, created)
		assert.Empty(t, pub.events)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error - name lookup fails", func(t *testing.T) {
		// given
		repo := new(MockProductStore)
		repo.On("FindByName", mock.Anything, "Widget").Return(nil, errStore)
		svc := newTestService(t, repo, nil)

		// when
		_, err := svc.Create(context.Background(), input)

		// then
		assert.ErrorIs(t, err, errStore)
		assert.NotErrorIs(t, err, perrors.ErrProductAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error - save fails", func(t *testing.T) {
		// given
		repo := new(MockProductStore)
		repo.On("FindByName", mock.Anything, "Widget").Return(nil, perrors.ErrProductNotFound)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil, errStore)
		svc := newTestService(t, repo, nil)

		// when
		_, err := svc.Create(context.Background(), input)

		// then
		assert.ErrorIs(t, err, errStore)
	})

	t.Run("Success - publish failure does not fail the request", func(t *testing.T) {
		// given
		repo := new(MockProductStore)
		pub := &recordingPublisher{err: errors.New("nats down")}
		repo.On("FindByName", mock.Anything, "Widget").Return(nil, perrors.ErrProductNotFound)
		repo.On("Save", mock.Anything, mock.Anything).Return(&db.Product{ID: 1, Name: "Widget", Price: 10}, nil)
		svc := newTestService(t, repo, pub)

		// when
		created, err := svc.Create(context.Background(), input)

		// then
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.Len(t, pub.events, 1)
	})
}

func Test_ProductService_Update(t *testing.T) {
	t.Run("Success - name and price overwritten, id kept", func(t *testing.T) {
		// given
		repo := new(MockProductStore)
		pub := &recordingPublisher{}
		repo.On("FindByID", mock.Anything, int64(1)).Return(&db.Product{ID: 1, Name: "Widget", Price: 10}, nil)
		repo.On("Save", mock.Anything, db.Product{ID: 1, Name: "Widget2", Price: 12}).
			Return(&db.Product{ID: 1, Name: "Widget2", Price: 12}, nil)
		svc := newTestService(t, repo, pub)

		// when
		updated, err := svc.Update(context.Background(), 1, ProductInput{Name: "Widget2", Price: 12})

		// then
		require.NoError(t, err)
		assert.Equal(t, &ProductDto{ID: 1, Name: "Widget2", Price: 12}, updated)
		require.Len(t, pub.events, 1)
		assert.Equal(t, messaging.ProductUpdatedSubject, pub.events[0].Subject())
		// the new name is not checked for uniqueness
		repo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("Error - not found, nothing saved", func(t *testing.T) {
		// given
		repo := new(MockProductStore)
		repo.On("FindByID", mock.Anything, int64(7)).Return(nil, perrors.ErrProductNotFound)
		svc := newTestService(t, repo, nil)

		// when
		updated, err := svc.Update(context.Background(), 7, ProductInput{Name: "Widget2", Price: 12})

		// then
		assert.ErrorIs(t, err, perrors.ErrProductNotFound)
		assert.Nil(t, updated)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func Test_ProductService_Delete(t *testing.T) {
	errStore := errors.New("store error")
	testCases := []struct {
		name        string
		storeErr    error
		expectError error
		events      int
	}{
		{name: "Success - existing or missing product", events: 1},
		{name: "Error - store failure", storeErr: errStore, expectError: errStore},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			repo := new(MockProductStore)
			pub := &recordingPublisher{}
			repo.On("DeleteByID", mock.Anything, int64(1)).Return(tc.storeErr)
			svc := newTestService(t, repo, pub)

			// when
			err := svc.Delete(context.Background(), 1)

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, pub.events, tc.events)
		})
	}
}

func Test_ProductService_WidgetScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewInMemoryStore(), nil)

	created, err := svc.Create(ctx, ProductInput{Name: "Widget", Price: 10.0})
	require.NoError(t, err)
	assert.Equal(t, &ProductDto{ID: 1, Name: "Widget", Price: 10.0}, created)

	_, err = svc.Create(ctx, ProductInput{Name: "Widget", Price: 5.0})
	assert.ErrorIs(t, err, perrors.ErrProductAlreadyExists)

	found, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &ProductDto{ID: 1, Name: "Widget", Price: 10.0}, found)

	updated, err := svc.Update(ctx, 1, ProductInput{Name: "Widget2", Price: 12.0})
	require.NoError(t, err)
	assert.Equal(t, &ProductDto{ID: 1, Name: "Widget2", Price: 12.0}, updated)

	require.NoError(t, svc.Delete(ctx, 1))
	require.NoError(t, svc.Delete(ctx, 1))

	_, err = svc.GetByID(ctx, 1)
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_ProductService_Metrics(t *testing.T) {
	// given
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	svc, err := NewService(store.NewInMemoryStore(), nil, mp.Meter("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	// when
	_, err = svc.Create(ctx, ProductInput{Name: "Widget", Price: 10})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ProductInput{Name: "Widget", Price: 10})
	require.Error(t, err)
	_, err = svc.Update(ctx, 1, ProductInput{Name: "Widget", Price: 11})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 1))

	// then
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, m.Name)
			for _, dp := range sum.DataPoints {
				got[m.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{
		"products_created":          1,
		"products_create_conflicts": 1,
		"products_updated":          1,
		"products_deleted":          1,
	}, got)
}

func Test_ProductEventPayload(t *testing.T) {
	pub := &recordingPublisher{}
	repo := new(MockProductStore)
	repo.On("FindByName", mock.Anything, "Widget").Return(nil, perrors.ErrProductNotFound)
	repo.On("Save", mock.Anything, mock.Anything).Return(&db.Product{ID: 3, Name: "Widget", Price: 2.5}, nil)
	svc := newTestService(t, repo, pub)

	_, err := svc.Create(context.Background(), ProductInput{Name: "Widget", Price: 2.5})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	event, ok := pub.events[0].(events.ProductEvent)
	require.True(t, ok)
	assert.Equal(t, events.KindCreated, event.Kind)
	assert.Equal(t, int64(3), event.ProductID)
	assert.Equal(t, "Widget", event.Name)
	assert.InDelta(t, 2.5, event.Price, 0.0001)
	assert.False(t, event.OccurredAt.IsZero())
	assert.NotEmpty(t, event.ID())
}
