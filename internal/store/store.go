// Package store provides the product repository used by the service layer.
package store

import (
	"context"

	"github.com/abgdnv/productcatalog/internal/store/db"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
// Implementations must be safe for concurrent use.
type ProductStore interface {
	// FindAll returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]db.Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*db.Product, error)

	// FindByName retrieves the product with the given name.
	// Returns ErrProductNotFound if no product has that name.
	FindByName(ctx context.Context, name string) (*db.Product, error)

	// Save inserts the product when its ID is zero, assigning a new ID,
	// and overwrites the stored product with the same ID otherwise.
	// Returns ErrProductNotFound when updating a product that no longer exists.
	Save(ctx context.Context, product db.Product) (*db.Product, error)

	// DeleteByID removes a product by its ID.
	// Deleting an ID that does not exist is not an error.
	DeleteByID(ctx context.Context, id int64) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
