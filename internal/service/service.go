// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// List returns all products in repository order.
	// Returns an empty slice if no products exist.
	List(ctx context.Context) ([]ProductDto, error)

	// GetByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	GetByID(ctx context.Context, id int64) (*ProductDto, error)

	// Create adds a new product to the system.
	// Returns ErrProductAlreadyExists if a product with the same name exists.
	Create(ctx context.Context, input ProductInput) (*ProductDto, error)

	// Update overwrites the name and price of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, input ProductInput) (*ProductDto, error)

	// Delete removes a product by its ID. Deleting a missing product succeeds.
	Delete(ctx context.Context, id int64) error
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ProductInput carries the client-supplied attributes of a product.
type ProductInput struct {
	Name  string
	Price float64
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
	metrics    *serviceMetrics
}

var _ ProductService = (*Service)(nil)

type serviceMetrics struct {
	created   metric.Int64Counter
	conflicts metric.Int64Counter
	updated   metric.Int64Counter
	deleted   metric.Int64Counter
}

func newServiceMetrics(meter metric.Meter) (*serviceMetrics, error) {
	var m serviceMetrics
	var err error
	if m.created, err = meter.Int64Counter("products_created", metric.WithDescription("Number of products created")); err != nil {
		return nil, err
	}
	if m.conflicts, err = meter.Int64Counter("products_create_conflicts", metric.WithDescription("Number of create requests rejected because the name exists")); err != nil {
		return nil, err
	}
	if m.updated, err = meter.Int64Counter("products_updated", metric.WithDescription("Number of products updated")); err != nil {
		return nil, err
	}
	if m.deleted, err = meter.Int64Counter("products_deleted", metric.WithDescription("Number of delete requests served")); err != nil {
		return nil, err
	}
	return &m, nil
}

// NewService creates a new instance of ProductService with the provided repository.
// A nil publisher disables event publishing.
func NewService(repo store.ProductStore, publisher messaging.Publisher, meter metric.Meter, logger *slog.Logger) (*Service, error) {
	m, err := newServiceMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create service metrics: %w", err)
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger,
		metrics:    m,
	}, nil
}

// List retrieves all products and returns them as ProductDTOs.
func (s *Service) List(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}
	return productDTOs, nil
}

// GetByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDto(product), nil
}

// Create creates a new product and returns it with its assigned ID.
// Returns ErrProductAlreadyExists if the name is taken.
//
// The name check and the insert are separate repository calls, so two
// concurrent creates with the same name can both succeed.
func (s *Service) Create(ctx context.Context, input ProductInput) (*ProductDto, error) {
	existing, err := s.repository.FindByName(ctx, input.Name)
	switch {
	case err == nil && existing != nil:
		s.metrics.conflicts.Add(ctx, 1)
		return nil, fmt.Errorf("product with name %q: %w", input.Name, perrors.ErrProductAlreadyExists)
	case err != nil && !errors.Is(err, perrors.ErrProductNotFound):
		return nil, fmt.Errorf("failed to look up product by name: %w", err)
	}

	created, err := s.repository.Save(ctx, db.Product{Name: input.Name, Price: input.Price})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.metrics.created.Add(ctx, 1)
	s.publish(ctx, events.KindCreated, created.ID, created.Name, created.Price)
	return toDto(created), nil
}

// Update overwrites the name and price of the product with the given ID.
// The new name is not checked against other products.
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product with ID %d: %w", id, err)
	}
	product.Name = input.Name
	product.Price = input.Price

	updated, err := s.repository.Save(ctx, *product)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	s.metrics.updated.Add(ctx, 1)
	s.publish(ctx, events.KindUpdated, updated.ID, updated.Name, updated.Price)
	return toDto(updated), nil
}

// Delete deletes a product by its ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	s.metrics.deleted.Add(ctx, 1)
	s.publish(ctx, events.KindDeleted, id, "", 0)
	return nil
}

// publish sends a lifecycle event. Failures are logged and never returned.
func (s *Service) publish(ctx context.Context, kind string, id int64, name string, price float64) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	event := events.ProductEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		ProductID:  id,
		Name:       name,
		Price:      price,
		OccurredAt: time.Now().UTC(),
		Carrier:    carrier,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product event", "subject", event.Subject(), "product_id", id, "error", err)
	}
}

// toDto converts a db.Product to a ProductDto.
func toDto(product *db.Product) *ProductDto {
	return &ProductDto{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
	}
}
