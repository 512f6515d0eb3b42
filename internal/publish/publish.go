// Package publish forwards events received via EventSub to an AMQP exchange, so that
// other services can react to them without holding subscriptions of their own
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/slog"

	"github.com/golden-vcr/eventsub/internal/subscription"
	"github.com/golden-vcr/eventsub/internal/topic"
)

// DefaultExchange is the name of the exchange that Twitch events are published to
const DefaultExchange = "twitch-events"

const publishTimeout = 5 * time.Second

// Message is the body of each AMQP message we publish
type Message struct {
	Type    string          `json:"type"`
	Version string          `json:"version"`
	Event   json.RawMessage `json:"event"`
}

// Channel is the subset of *amqp.Channel functionality used to publish messages
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ Channel = (*amqp.Channel)(nil)

// Publisher writes events to a fanout exchange as JSON-encoded Messages
type Publisher struct {
	ch       Channel
	exchange string
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher opens a channel on the given connection and declares the exchange that
// events will be published to
func NewPublisher(conn *amqp.Connection, exchange string, logger *slog.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}
	return newPublisher(ch, exchange, logger), nil
}

func newPublisher(ch Channel, exchange string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish sends a single event, decoded from a subscription to the given topic
func (p *Publisher) Publish(ctx context.Context, d topic.Descriptor, ev any) error {
	event, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to serialize %s event: %w", d.Type(), err)
	}
	body, err := json.Marshal(Message{
		Type:    d.Type(),
		Version: d.Version(),
		Event:   event,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, d.Type(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.now(),
		Type:         d.Type(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", d.Type(), err)
	}
	return nil
}

// Handler returns an EventHandler that publishes every event it receives, logging any
// failures
func (p *Publisher) Handler() subscription.EventHandler {
	return func(d topic.Descriptor, ev any) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, d, ev); err != nil {
			p.logger.Error("Failed to publish event", "topicId", d.ID(), "error", err)
			return
		}
		p.logger.Info("Published event", "topicId", d.ID(), "exchange", p.exchange)
	}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}
