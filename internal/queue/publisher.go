package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cidade-aberta/internal/logger"
)

// DefaultDialTimeout bounds connecting to the broker, handshake included.
const DefaultDialTimeout = 2 * time.Second

// Publisher sends notifications to a durable queue. Each call dials its own
// connection; publishing happens at human request rates.
type Publisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
	Log         *logger.Logger
}

// NewPublisher returns a publisher for queue on the broker at url.
func NewPublisher(url, queue string, log *logger.Logger) *Publisher {
	return &Publisher{URL: url, Queue: queue, DialTimeout: DefaultDialTimeout, Log: log.WithComponent("publisher")}
}

// dial connects within DialTimeout, or sooner when ctx expires first.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	return amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Publish delivers n as a persistent JSON message. Errors are logged and
// returned; callers treat them as non-fatal.
func (p *Publisher) Publish(ctx context.Context, n Notification) error {
	if n.OccurredAt == "" {
		n.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	log := p.Log.WithField("kind", n.Kind)

	conn, err := p.dial(ctx)
	if err != nil {
		log.WithError(err).Warn("dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, p.Queue); err != nil {
		log.WithError(err).Warn("queue declare failed")
		return err
	}

	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.WithError(err).Warn("publish failed")
	}
	return err
}

// declare makes sure the durable queue exists.
func declare(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}

// Discard drops notifications. Used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, Notification) error { return nil }
