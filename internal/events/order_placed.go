package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/order"
)

const (
	OrderPlacedEventName    = "OrderPlaced"
	OrderPlacedEventVersion = 1
	OrderPlacedSchemaPath   = "contracts/events/storefront/OrderPlaced.v1.enveloped.schema.json"
	DefaultProducer         = "rental-storefront"
)

type OrderPlacedPayload struct {
	OrderID       string            `json:"orderId"`
	UserID        string            `json:"userId"`
	Items         []OrderPlacedItem `json:"items"`
	Subtotal      int64             `json:"subtotal"`
	TotalAmount   int64             `json:"totalAmount"`
	Duration      int               `json:"duration"`
	StartDate     time.Time         `json:"startDate"`
	EndDate       time.Time         `json:"endDate"`
	PaymentMethod string            `json:"paymentMethod"`
	Status        string            `json:"status"`
	OrderDate     time.Time         `json:"orderDate"`
}

type OrderPlacedItem struct {
	Category string `json:"category"`
	ItemID   int    `json:"itemId"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type OrderPlacedEvent = EventEnvelope[OrderPlacedPayload]

type EnvelopeOptions struct {
	Sequence      int64
	Producer      string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

// BuildOrderPlacedEvent wraps o in an envelope partitioned by user.
// Empty options fall back to a fresh event id, the current time and the default producer.
func BuildOrderPlacedEvent(o order.Order, opts EnvelopeOptions) OrderPlacedEvent {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	producer := opts.Producer
	if producer == "" {
		producer = DefaultProducer
	}

	payload := OrderPlacedPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Subtotal:      o.Subtotal,
		TotalAmount:   o.TotalAmount,
		Duration:      o.Duration,
		StartDate:     o.StartDate,
		EndDate:       o.EndDate,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		OrderDate:     o.OrderDate,
	}
	for _, li := range o.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			Category: string(li.Category),
			ItemID:   li.ID,
			Title:    li.Title,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}

	return OrderPlacedEvent{
		EventName:     OrderPlacedEventName,
		EventVersion:  OrderPlacedEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  o.UserID,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        OrderPlacedSchemaPath,
		Payload:       payload,
	}
}
