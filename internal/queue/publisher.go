package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/yacht-charter/internal/model"
)

type publishChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// opener returns a channel and a function releasing it.
type opener func(url string) (publishChannel, func(), error)

func dialChannel(url string) (publishChannel, func(), error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("channel open: %w", err)
	}
	return ch, func() {
		_ = ch.Close()
		_ = conn.Close()
	}, nil
}

// Publisher sends events to the topic exchange.  It opens a connection per
// message, which is fine for the handful of writes this service makes.
// An empty URL disables publishing.
type Publisher struct {
	url      string
	exchange string
	log      *slog.Logger
	open     opener
	now      func() time.Time
}

func NewPublisher(url, exchange string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Publisher{url: url, exchange: exchange, log: log, open: dialChannel, now: time.Now}
}

// Enabled reports whether a broker URL is configured.
func (p *Publisher) Enabled() bool { return p != nil && p.url != "" }

// PublishBookingCreated announces a stored booking and the change of the
// bookings table.
func (p *Publisher) PublishBookingCreated(ctx context.Context, b model.Booking) error {
	if !p.Enabled() {
		return nil
	}
	if err := p.publish(ctx, RoutingKeyBookingCreated, NewBookingCreatedEvent(b, p.now())); err != nil {
		return err
	}
	return p.PublishChange(ctx, "bookings", OpInsert, b.ID)
}

// PublishChange announces a change of table.
func (p *Publisher) PublishChange(ctx context.Context, table, op string, rowID uint64) error {
	if !p.Enabled() {
		return nil
	}
	return p.publish(ctx, ChangeKey(table), ChangeEvent{Table: table, Op: op, RowID: rowID, At: p.now().UTC()})
}

func (p *Publisher) publish(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	ch, release, err := p.open(p.url)
	if err != nil {
		p.log.Warn("rabbitmq unavailable", slog.String("routing_key", key), slog.Any("err", err))
		return err
	}
	defer release()

	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}
