package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/juberthrdzz/vapi-voice-agent/internal/order"
)

const OrderCreatedQueue = "order.created"

// OrderCreated is the event emitted after an order is durably persisted.
// Consumers (kitchen displays, analytics) are decoupled from checkout:
// a publish failure never fails the checkout that produced the order.
type OrderCreated struct {
	EventType   string      `json:"eventType"`
	EventID     string      `json:"eventId"`
	OrderID     string      `json:"orderId"`
	SessionID   string      `json:"sessionId"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Timestamp   time.Time   `json:"timestamp"`
}

type OrderItem struct {
	ItemID          string `json:"itemId"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

// NewOrderCreated builds the event for a persisted order.
func NewOrderCreated(o *order.Order, sessionID string) OrderCreated {
	ev := OrderCreated{
		EventType:   "OrderCreated",
		EventID:     uuid.NewString(),
		OrderID:     o.OrderID,
		SessionID:   sessionID,
		TotalAmount: o.TotalAmount,
		Timestamp:   time.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderItem{
			ItemID:          it.ItemID,
			Quantity:        it.Quantity,
			SpecialRequests: it.SpecialRequests,
		})
	}
	return ev
}

type Publisher struct {
	ch *amqp.Channel
}

// Dial connects to RabbitMQ at url.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return conn, nil
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the queue so publish never fails due to missing infra
	if _, err := ch.QueueDeclare(OrderCreatedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", OrderCreatedQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, o *order.Order, sessionID string) error {
	body, err := json.Marshal(NewOrderCreated(o, sessionID))
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",                // default exchange
		OrderCreatedQueue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
