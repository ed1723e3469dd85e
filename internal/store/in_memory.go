package store

import (
	"context"
	"sort"
	"sync"

	"github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store/db"
)

// InMemory implements ProductStore using an in-memory map.
// IDs are assigned sequentially starting at 1.
type InMemory struct {
	mu       sync.RWMutex
	products map[int64]db.Product
	nextID   int64
}

var _ ProductStore = (*InMemory)(nil)

// NewInMemoryStore creates a new, empty in-memory ProductStore.
func NewInMemoryStore() *InMemory {
	return &InMemory{
		products: make(map[int64]db.Product),
		nextID:   1,
	}
}

// FindAll retrieves all products ordered by ID.
func (s *InMemory) FindAll(_ context.Context) ([]db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]db.Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// FindByID retrieves a product by its ID.
func (s *InMemory) FindByID(_ context.Context, id int64) (*db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &p, nil
}

// FindByName retrieves the product with the lowest ID carrying the given name.
func (s *InMemory) FindByName(_ context.Context, name string) (*db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *db.Product
	for _, p := range s.products {
		if p.Name != name {
			continue
		}
		if found == nil || p.ID < found.ID {
			match := p
			found = &match
		}
	}
	if found == nil {
		return nil, errors.ErrProductNotFound
	}
	return found, nil
}

// Save inserts the product when its ID is zero and replaces the stored one otherwise.
func (s *InMemory) Save(_ context.Context, product db.Product) (*db.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == 0 {
		product.ID = s.nextID
		s.nextID++
	} else if _, exists := s.products[product.ID]; !exists {
		return nil, errors.ErrProductNotFound
	}
	s.products[product.ID] = product
	return &product, nil
}

// DeleteByID deletes a product by its ID. Unknown IDs are ignored.
func (s *InMemory) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	return nil
}

// Ping always succeeds.
func (s *InMemory) Ping(_ context.Context) error {
	return nil
}
