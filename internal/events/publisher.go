// Package events publishes ticket lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const TicketIssuedQueue = "ticket.issued"

// TicketIssuedEvent is published once per ticket issued by the gateway.
type TicketIssuedEvent struct {
	TicketID   string `json:"ticket_id"`
	OrderID    string `json:"order_id"`
	RouteID    string `json:"route_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	AmountPaid int64  `json:"amount_minor"`
	CreatedAt  string `json:"created_at"`
	IssuedAt   string `json:"issued_at"`
}

const defaultPublishTimeout = 5 * time.Second

// Publisher sends events to the broker at URL over one connection that is
// reused across publishes and redialed after it drops. A zero URL disables
// publishing. Timeout bounds each publish, dialing included.
type Publisher struct {
	URL     string
	Timeout time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string) *Publisher {
	return &Publisher{URL: url, Timeout: defaultPublishTimeout}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.URL != ""
}

func (p *Publisher) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return defaultPublishTimeout
}

// channel returns the open channel, dialing and declaring the queue when
// there is none. Callers hold p.mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.timeout())})
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(
		TicketIssuedQueue, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// PublishTicketIssued publishes a persistent JSON message to the ticket.issued queue.
// Errors are logged and returned; callers may ignore them.
func (p *Publisher) PublishTicketIssued(ctx context.Context, event TicketIssuedEvent) error {
	if !p.Enabled() {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		log.Printf("rabbitmq: %v", err)
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.TicketID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", TicketIssuedQueue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		p.reset()
		return err
	}
	return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}
