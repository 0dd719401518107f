// Package events publishes order lifecycle events to RabbitMQ. Publishing
// is best-effort: writers log failures and move on, they never roll back.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderEvent is the wire shape of every published event.
type OrderEvent struct {
	OrderID  string    `json:"order_id"`
	Type     string    `json:"type"`
	Review   string    `json:"review,omitempty"`
	Occurred time.Time `json:"occurred"`
}

// Config names the broker topology the publisher declares.
type Config struct {
	URL         string
	Exchange    string
	OrderQueue  string
	ReviewQueue string
}

// Publisher owns one AMQP connection and channel.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	cfg  Config
}

// Dial connects to the broker and declares the exchange and queues.
func Dial(cfg Config) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &Publisher{conn: conn, ch: ch, cfg: cfg}
	if err := p.setup(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) setup() error {
	if err := p.ch.ExchangeDeclare(
		p.cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := p.ch.QueueDeclare(
		p.cfg.OrderQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := p.ch.QueueBind(p.cfg.OrderQueue, "order.*", p.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind order queue: %w", err)
	}

	if _, err := p.ch.QueueDeclare(
		p.cfg.ReviewQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare review queue: %w", err)
	}
	if err := p.ch.QueueBind(p.cfg.ReviewQueue, "review.created", p.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind review queue: %w", err)
	}

	return nil
}

// PublishOrderEvent emits a lifecycle event such as order.created or
// order.cancelled; the event type doubles as the routing key.
func (p *Publisher) PublishOrderEvent(orderID, eventType string) error {
	return p.publish(eventType, OrderEvent{
		OrderID:  orderID,
		Type:     eventType,
		Occurred: time.Now(),
	})
}

// PublishReviewEvent emits a review.created event carrying the review text
// for asynchronous sentiment classification.
func (p *Publisher) PublishReviewEvent(orderID, review string) error {
	return p.publish("review.created", OrderEvent{
		OrderID:  orderID,
		Type:     "review.created",
		Review:   review,
		Occurred: time.Now(),
	})
}

func (p *Publisher) publish(routingKey string, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	return p.ch.Publish(
		p.cfg.Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Occurred,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

// Channel exposes the underlying channel for consumers sharing the
// connection.
func (p *Publisher) Channel() *amqp.Channel {
	return p.ch
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
