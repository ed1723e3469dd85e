// Package events contains the product lifecycle events published by the service.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/productcatalog/pkg/messaging"
)

// ProductEvent describes a product after a create or update, or the id of a deleted product.
type ProductEvent struct {
	EventID    string            `json:"event_id"`
	Kind       string            `json:"kind"`
	ProductID  int64             `json:"product_id"`
	Name       string            `json:"name,omitempty"`
	Price      float64           `json:"price"`
	OccurredAt time.Time         `json:"occurred_at"`
	Carrier    map[string]string `json:"carrier,omitempty"`
}

// ID returns the unique event id.
func (e ProductEvent) ID() string {
	return e.EventID
}

func (e ProductEvent) Subject() string {
	return messaging.ProductsSubjectPrefix + e.Kind
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)
