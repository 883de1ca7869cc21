package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchange = "booking_topic"

// Publisher pushes booking lifecycle events to interested consumers
// (SMS/notification workers). The OTP travels here so it can reach the
// passenger out-of-band instead of only over the API response.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// NewPublisher connects to RabbitMQ when url is set; otherwise events are
// logged and dropped so the API works without a broker.
func NewPublisher(url string) Publisher {
	if url == "" {
		return noopPublisher{}
	}
	p, err := newAMQPPublisher(url)
	if err != nil {
		log.Printf("[NOTIFY] action=connect msg=broker unavailable, events disabled: %v", err)
		return noopPublisher{}
	}
	return p
}

type amqpPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func newAMQPPublisher(url string) (*amqpPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	log.Printf("[NOTIFY] action=connect msg=rabbitmq publisher ready exchange=%s", exchange)
	return &amqpPublisher{conn: conn, ch: ch}, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	log.Printf("[NOTIFY] action=drop routing_key=%s msg=no broker configured", routingKey)
	return nil
}

func (noopPublisher) Close() error { return nil }
