// Package event publishes cart state changes to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inteiros/GoStack-GoMarketplace/internal/domain"
	pkgkafka "github.com/inteiros/GoStack-GoMarketplace/pkg/kafka"
	"github.com/inteiros/GoStack-GoMarketplace/pkg/logger"
)

// TopicCartUpdated receives one event per persisted cart snapshot.
const TopicCartUpdated = "ecommerce.cart.updated"

// EventCartUpdated is the envelope event type.
const EventCartUpdated = "cart.updated"

// SourceCart identifies events originating from the cart.
const SourceCart = "cart"

// CartUpdatedData is the payload of a cart.updated event.
type CartUpdatedData struct {
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
}

// Publisher is the part of the Kafka producer the cart events need.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer turns persisted carts into cart.updated events.
type Producer struct {
	publisher Publisher
	key       string
	logger    *slog.Logger
}

// NewProducer creates a producer whose events carry key as aggregate id.
func NewProducer(publisher Publisher, key string, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		key:       key,
		logger:    logger,
	}
}

// NewCartUpdated builds the cart.updated envelope for c.
func NewCartUpdated(ctx context.Context, key string, c domain.Cart) (*pkgkafka.Event, error) {
	items := c.Clone()
	data := CartUpdatedData{
		Items:     items,
		ItemCount: c.ItemCount(),
	}

	ev, err := pkgkafka.NewEvent(EventCartUpdated, key, SourceCart, data)
	if err != nil {
		return nil, fmt.Errorf("create cart.updated event: %w", err)
	}
	ev.CorrelationID = logger.CorrelationIDFromContext(ctx)
	return ev, nil
}

// CartPersisted publishes a cart.updated event.
func (p *Producer) CartPersisted(ctx context.Context, c domain.Cart) error {
	ev, err := NewCartUpdated(ctx, p.key, c)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(ctx, TopicCartUpdated, ev); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("event_id", ev.EventID),
		slog.Int("item_count", c.ItemCount()),
	)
	return nil
}
