// Package relay forwards domain events to Kafka for consumers outside this
// process (search indexing, notifications). It subscribes to the in-process
// bus like any projector, so a broker outage never blocks the command path
// or the other handlers.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
	"github.com/OlegStrokan/free-ebay-sub000/internal/eventbus"
)

// Kafka publishes every order event as a JSON message keyed by order id, so
// a partition preserves per-order ordering.
type Kafka struct {
	writer *kafka.Writer
}

func NewKafka(brokers, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Register subscribes the relay to every order event kind.
func (k *Kafka) Register(bus *eventbus.Bus) {
	kinds := []string{
		order.EventKindCreated,
		order.EventKindShipped,
		order.EventKindCancelled,
		order.EventKindDelivered,
		order.EventKindCompleted,
	}
	for _, kind := range kinds {
		bus.Subscribe(kind, eventbus.HandlerFunc(k.publish))
	}
}

func (k *Kafka) publish(ctx context.Context, event order.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("relay: encode %s: %w", event.Kind(), err)
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AggregateID()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-kind", Value: []byte(event.Kind())},
		},
	})
	if err != nil {
		return fmt.Errorf("relay: publish %s for %s: %w", event.Kind(), event.AggregateID(), err)
	}
	return nil
}
