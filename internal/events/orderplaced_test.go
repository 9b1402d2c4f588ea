package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisharafi88/Store-api/internal/order"
)

func TestBuildOrderPlacedEvent(t *testing.T) {
	occurredAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	o := &order.Order{
		ID:         "order-1",
		CustomerID: "cust-1",
		Status:     order.StatusUnfulfilled,
		Items: []order.Item{
			{
				Product:   order.Product{ID: "p1", Name: "product alpha"},
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("10.00"),
			},
		},
	}

	ev := BuildOrderPlacedEvent(o, EnvelopeOptions{
		CorrelationID: "corr-1",
		EventID:       "event-1",
		OccurredAt:    occurredAt,
	})

	assert.Equal(t, "OrderPlaced", ev.EventName)
	assert.Equal(t, 1, ev.EventVersion)
	assert.Equal(t, "event-1", ev.EventID)
	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.Equal(t, "store-api", ev.Producer)
	assert.Equal(t, "cust-1", ev.PartitionKey)
	assert.Equal(t, occurredAt, ev.OccurredAt)

	assert.Equal(t, "order-1", ev.Payload.OrderID)
	assert.Equal(t, "unfulfilled", ev.Payload.Status)
	require.Len(t, ev.Payload.Items, 1)
	assert.True(t, ev.Payload.TotalPrice.Equal(decimal.RequireFromString("20.00")))
}

func TestBuildOrderPlacedEvent_DefaultsEventIDAndTime(t *testing.T) {
	ev := BuildOrderPlacedEvent(&order.Order{ID: "order-1"}, EnvelopeOptions{})

	assert.NotEmpty(t, ev.EventID)
	assert.False(t, ev.OccurredAt.IsZero())
	assert.Equal(t, ev.OccurredAt, ev.Payload.Timestamp)
}

func TestOrderPlacedEnvelope_JSONShape(t *testing.T) {
	ev := BuildOrderPlacedEvent(&order.Order{
		ID:         "order-1",
		CustomerID: "cust-1",
		Status:     order.StatusUnfulfilled,
	}, EnvelopeOptions{EventID: "event-1"})

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	// consumers match on these envelope keys
	for _, key := range []string{"eventName", "eventVersion", "eventId", "producer", "partitionKey", "occurredAt", "schema", "payload"} {
		assert.Contains(t, m, key)
	}
}
