package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/order"
)

const (
	EventsExchange        = "rental.events"
	OrderPlacedRoutingKey = "order.placed.v1"
	publishTimeout        = 3 * time.Second
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch       Channel
	producer string
	seq      *Sequencer
	logger   *zap.Logger
}

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

func NewPublisher(conn *amqp.Connection, producer string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return NewPublisherWithChannel(ch, producer, logger)
}

// NewPublisherWithChannel declares the events exchange on ch.
func NewPublisherWithChannel(ch Channel, producer string, logger *zap.Logger) (*Publisher, error) {
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	if producer == "" {
		producer = DefaultProducer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{ch: ch, producer: producer, seq: NewSequencer(), logger: logger}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, meta Meta, o order.Order) error {
	ev := BuildOrderPlacedEvent(o, EnvelopeOptions{
		Sequence:      p.seq.Next(o.UserID),
		Producer:      p.producer,
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
	})
	if err := ev.Validate(OrderPlacedEventName, OrderPlacedEventVersion); err != nil {
		return fmt.Errorf("invalid OrderPlaced envelope: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}

	if err := p.publishJSON(ctx, OrderPlacedRoutingKey, ev.EventID, ev.CorrelationID, body); err != nil {
		return fmt.Errorf("publish OrderPlaced: %w", err)
	}
	p.logger.Info("published event",
		zap.String("event", OrderPlacedEventName),
		zap.String("order_id", o.ID),
		zap.Int64("sequence", ev.Sequence))
	return nil
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		},
	)
}

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, Meta, order.Order) error { return nil }

// Sequencer hands out per partition sequence numbers starting at 1.
// Sequences restart with the process.
type Sequencer struct {
	mu   sync.Mutex
	next map[string]int64
}

func NewSequencer() *Sequencer {
	return &Sequencer{next: make(map[string]int64)}
}

func (s *Sequencer) Next(partitionKey string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next[partitionKey]++
	return s.next[partitionKey]
}
