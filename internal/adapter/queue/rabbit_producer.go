package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nahuarce12/ecommerce/internal/usecase"
)

const (
	rkOrderCreated = "order.created"
	rkOrderPaid    = "order.paid"

	QueueOrderCreated = "order.created.q"
	QueueOrderPaid    = "order.paid.q"
)

// RabbitProducer implements usecase.EventPublisher on a topic exchange.
type RabbitProducer struct {
	ch       *amqp.Channel
	exchange string
}

// NewRabbitProducer sets up the exchange, queues, and bindings once at startup.
func NewRabbitProducer(ch *amqp.Channel, exchange string) (*RabbitProducer, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for queueName, rk := range map[string]string{
		QueueOrderCreated: rkOrderCreated,
		QueueOrderPaid:    rkOrderPaid,
	} {
		q, err := ch.QueueDeclare(
			queueName,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
		}
		if err := ch.QueueBind(q.Name, rk, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue %s: %w", queueName, err)
		}
	}

	// publisher confirms so a broker hiccup surfaces at publish time
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitProducer{ch: ch, exchange: exchange}, nil
}

func (p *RabbitProducer) PublishOrderCreated(ctx context.Context, msg usecase.OrderCreatedMsg) error {
	return p.publish(ctx, rkOrderCreated, msg)
}

func (p *RabbitProducer) PublishOrderPaid(ctx context.Context, msg usecase.OrderPaidMsg) error {
	return p.publish(ctx, rkOrderPaid, msg)
}

func (p *RabbitProducer) publish(ctx context.Context, routingKey string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         body,
	}

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

var _ usecase.EventPublisher = (*RabbitProducer)(nil)
