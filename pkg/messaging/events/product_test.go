package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductEvent_Subject(t *testing.T) {
	assert.Equal(t, messaging.ProductCreatedSubject, ProductEvent{Kind: KindCreated}.Subject())
	assert.Equal(t, messaging.ProductUpdatedSubject, ProductEvent{Kind: KindUpdated}.Subject())
	assert.Equal(t, messaging.ProductDeletedSubject, ProductEvent{Kind: KindDeleted}.Subject())
}

func TestProductEvent_Payload(t *testing.T) {
	// given
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	event := ProductEvent{EventID: "evt-9", Kind: KindDeleted, ProductID: 9, OccurredAt: at}

	// when
	data, err := event.Payload()

	// then
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "evt-9", decoded["event_id"])
	assert.Equal(t, "evt-9", event.ID())
	assert.Equal(t, "deleted", decoded["kind"])
	assert.EqualValues(t, 9, decoded["product_id"])
	assert.NotContains(t, decoded, "name")
	assert.Equal(t, "2025-01-02T03:04:05Z", decoded["occurred_at"])
}

func TestProductEvent_PayloadKeepsZeroPrice(t *testing.T) {
	// given
	event := ProductEvent{EventID: "evt-1", Kind: KindCreated, ProductID: 1, Name: "Freebie", Price: 0}

	// when
	data, err := event.Payload()

	// then
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "price")
	assert.EqualValues(t, 0, decoded["price"])
}
