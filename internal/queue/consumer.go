package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CacheInvalidator drops cached responses built from a table.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, table string) error
}

// BookingNotifier is told about every new booking.
type BookingNotifier interface {
	NotifyBookingCreated(ctx context.Context, ev BookingCreatedEvent)
}

// Dispatcher routes one delivery to the matching handler.  Either handler
// may be nil.
type Dispatcher struct {
	Cache    CacheInvalidator
	Notifier BookingNotifier
	Log      *slog.Logger
}

// ErrUnroutable marks a delivery with a routing key nobody handles.
var ErrUnroutable = errors.New("unroutable message")

// Dispatch handles one message.  A change of any table is a full reload
// signal: every cached response tagged with it is dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, key string, body []byte) error {
	if table, ok := TableFromKey(key); ok {
		if d.Cache == nil {
			return nil
		}
		if err := d.Cache.Invalidate(ctx, table); err != nil {
			return fmt.Errorf("invalidate %s: %w", table, err)
		}
		d.logger().Debug("cache invalidated", slog.String("table", table))
		return nil
	}
	if key == RoutingKeyBookingCreated {
		var ev BookingCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if d.Notifier != nil {
			d.Notifier.NotifyBookingCreated(ctx, ev)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnroutable, key)
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Log
}

// Consumer binds a durable queue to the exchange and feeds deliveries to
// a Dispatcher, reconnecting with exponential backoff until ctx ends.
type Consumer struct {
	URL      string
	Exchange string
	Queue    string
	Dispatch *Dispatcher
	Log      *slog.Logger
}

const maxBackoff = 30 * time.Second

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	log := c.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Warn("change-consumer: dial failed", slog.Any("err", err), slog.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("change-consumer: consume loop ended, reconnecting", slog.Any("err", err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection, log *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("change-consumer: set QoS failed", slog.Any("err", err))
	}
	if err := ch.ExchangeDeclare(c.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, key := range []string{changePrefix + "*", RoutingKeyBookingCreated} {
		if err := ch.QueueBind(c.Queue, key, c.Exchange, false, nil); err != nil {
			return fmt.Errorf("queue bind %s: %w", key, err)
		}
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Dispatch.Dispatch(ctx, d.RoutingKey, d.Body); err != nil {
				log.Error("change-consumer: handle message failed",
					slog.String("routing_key", d.RoutingKey), slog.Any("err", err))
				_ = d.Nack(false, false) // do not requeue, avoids tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
