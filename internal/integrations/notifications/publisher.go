package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrConnect  = errors.New("notifications: failed to connect to broker")
	ErrPublish  = errors.New("notifications: failed to publish event")
	ErrNotAcked = errors.New("notifications: broker did not confirm event")
	ErrMarshal  = errors.New("notifications: failed to marshal event")
	ErrClosed   = errors.New("notifications: publisher is closed")
)

// RabbitPublisher публикует события в topic exchange и ждёт подтверждения брокера
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	timeout  time.Duration
	closed   bool
}

// NewRabbitPublisher подключается к брокеру, объявляет durable topic exchange
// и включает publisher confirms на канале
func NewRabbitPublisher(url, exchange string, timeout time.Duration) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare exchange %s: %v", ErrConnect, exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: enable confirms: %v", ErrConnect, err)
	}

	return &RabbitPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		timeout:  timeout,
	}, nil
}

// Publish отправляет событие с routing key = тип события
func (p *RabbitPublisher) Publish(ctx context.Context, event AppointmentEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	confirm, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, string(event.Type), false, false, msg)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublish, event.Type, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotAcked, event.Type, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s nacked", ErrNotAcked, event.Type)
	}

	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	_ = p.ch.Close()
	return p.conn.Close()
}

func newPublishing(event AppointmentEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("%w: %v", ErrMarshal, err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Body:         body,
		Headers: amqp.Table{
			"appointment_id": event.AppointmentID,
			"doctor_id":      event.DoctorID,
		},
	}, nil
}

// NopPublisher используется, когда RabbitMQ выключен
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AppointmentEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
