package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

var _ ProductStore = (*PgStore)(nil)

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

// FindAll retrieves all products ordered by ID.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]db.Product, error) {
	products, err := p.q.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	if products == nil {
		products = []db.Product{}
	}
	return products, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*db.Product, error) {
	product, err := p.q.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// FindByName retrieves the product with the given name, the oldest one if several share it.
// Returns ErrProductNotFound if no product has that name.
func (p *PgStore) FindByName(ctx context.Context, name string) (*db.Product, error) {
	product, err := p.q.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}
	return &product, nil
}

// Save inserts a new product (ID zero) or updates an existing one.
// Returns ErrProductNotFound if the product to update does not exist.
func (p *PgStore) Save(ctx context.Context, product db.Product) (*db.Product, error) {
	if product.ID == 0 {
		created, err := p.q.Create(ctx, db.CreateParams{
			Name:  product.Name,
			Price: product.Price,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
		return &created, nil
	}

	updated, err := p.q.Update(ctx, db.UpdateParams{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &updated, nil
}

// DeleteByID removes a product by its unique identifier.
// A missing product is not an error.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	if _, err := p.q.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
