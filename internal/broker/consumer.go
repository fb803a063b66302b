package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Werneck0live/cadastro-cnpj/internal/models"
)

// ErrDeliveriesClosed is returned by Run when the broker closes the channel.
var ErrDeliveriesClosed = errors.New("deliveries channel closed")

// Consumer reads company events from the queue the API publishes to.
type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
	log        *slog.Logger
}

func NewConsumer(uri, queue, tag string, prefetch int, log *slog.Logger) (*Consumer, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, ch, err := dialQueue(uri, queue)
	if err != nil {
		return nil, err
	}
	closeAll := func() {
		_ = ch.Close()
		_ = conn.Close()
	}

	if err := ch.Qos(prefetch, 0, false); err != nil {
		closeAll()
		return nil, fmt.Errorf("amqp qos: %w", err)
	}

	deliveries, err := ch.Consume(
		queue,
		tag,
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("amqp consume %s: %w", queue, err)
	}
	log.Info("rabbit_consumer_started", "queue", queue, "prefetch", prefetch)
	return &Consumer{conn: conn, ch: ch, deliveries: deliveries, log: log}, nil
}

// Run hands every decoded event to fn until ctx is done or the broker closes
// the deliveries channel. Bodies that are not events are logged and dropped.
func (c *Consumer) Run(ctx context.Context, fn func(ev models.CompanyEvent, body []byte)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-c.deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			var ev models.CompanyEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				c.log.Warn("event_decode_error", "err", err, "bytes", len(d.Body))
				continue
			}
			fn(ev, d.Body)
		}
	}
}

func (c *Consumer) Close() error {
	return errors.Join(c.ch.Close(), c.conn.Close())
}
