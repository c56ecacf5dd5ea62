package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/queue"
)

// EventPublisher delivers booking events to downstream consumers.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, ev queue.BookingEvent) error
}

// NopPublisher drops every event.  Used when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) PublishBookingEvent(context.Context, queue.BookingEvent) error { return nil }

// AMQPPublisher publishes events to the durable booking events queue,
// opening a fresh connection for every publish.
type AMQPPublisher struct {
	url    string
	logger *zap.Logger
}

func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// PublishBookingEvent sends ev as a persistent JSON message.  Errors are
// logged and returned so the caller can choose to ignore them.
func (p *AMQPPublisher) PublishBookingEvent(ctx context.Context, ev queue.BookingEvent) error {
	log := p.logger.With(zap.String("event", ev.Type), zap.String("booking_id", ev.BookingID))

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.BookingEventsQueue, // name
		true,                     // durable
		false,                    // autoDelete
		false,                    // exclusive
		false,                    // noWait
		nil,                      // args
	); err != nil {
		log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.BookingEventsQueue, false, false, pub); err != nil {
		log.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}
