package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

type EventPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
	timeout  time.Duration
}

// NewEventPublisher connects and declares the topic exchange. An empty URL
// yields a disabled publisher that only logs.
func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	if amqpURL == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{exchange: exchange}, nil
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &EventPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		enabled:  true,
		timeout:  5 * time.Second,
	}, nil
}

// Publish sends payload with the event type as routing key.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	msg, err := buildMessage(eventType, payload, time.Now().UTC())
	if err != nil {
		return err
	}

	if !p.enabled {
		log.Printf("[EVENT] %s (not published): %s", eventType, msg.Body)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		// amqp.Channel is not safe for concurrent publishes.
		p.mu.Lock()
		defer p.mu.Unlock()
		done <- p.channel.Publish(p.exchange, eventType, false, false, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to publish %s: %w", eventType, err)
		}
		log.Printf("[EVENT] %s published", eventType)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to publish %s: %w", eventType, ctx.Err())
	}
}

func buildMessage(eventType string, payload any, now time.Time) (amqp.Publishing, error) {
	envelope := Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: now,
		Payload:    payload,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    envelope.ID,
		Timestamp:    now,
		Type:         eventType,
		Body:         body,
	}, nil
}

func (p *EventPublisher) Enabled() bool {
	return p.enabled
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
