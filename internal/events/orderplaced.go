package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alisharafi88/Store-api/internal/order"
)

const (
	OrderPlacedEventName    = "OrderPlaced"
	OrderPlacedEventVersion = 1
	OrderPlacedSchemaPath   = "contracts/events/order/OrderPlaced.v1.enveloped.schema.json"
	StoreAPIProducer        = "store-api"
)

// EventEnvelope is the common envelope for emitted events.
type EventEnvelope struct {
	EventName     string             `json:"eventName"`
	EventVersion  int                `json:"eventVersion"`
	EventID       string             `json:"eventId"`
	CorrelationID string             `json:"correlationId,omitempty"`
	Producer      string             `json:"producer"`
	PartitionKey  string             `json:"partitionKey"`
	OccurredAt    time.Time          `json:"occurredAt"`
	Schema        string             `json:"schema"`
	Payload       OrderPlacedPayload `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID    string            `json:"orderId"`
	CustomerID string            `json:"customerId"`
	Status     string            `json:"status"`
	Items      []OrderPlacedItem `json:"items"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	Timestamp  time.Time         `json:"timestamp"`
}

type OrderPlacedItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type EnvelopeOptions struct {
	CorrelationID string
	EventID       string
	OccurredAt    time.Time
}

// BuildOrderPlacedEvent wraps an order in the v1 enveloped event. The
// partition key is the order's customer so per-customer ordering holds
// downstream.
func BuildOrderPlacedEvent(o *order.Order, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	payload := OrderPlacedPayload{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		TotalPrice: order.Total(o.Items),
		Timestamp:  occurredAt,
	}

	for _, it := range o.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			ProductID: it.Product.ID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return EventEnvelope{
		EventName:     OrderPlacedEventName,
		EventVersion:  OrderPlacedEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		Producer:      StoreAPIProducer,
		PartitionKey:  o.CustomerID,
		OccurredAt:    occurredAt,
		Schema:        OrderPlacedSchemaPath,
		Payload:       payload,
	}
}
