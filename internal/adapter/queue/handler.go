package queue

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler consumes one delivery. Order events arrive at-least-once, so
// handlers must tolerate redelivery. nil acks the message; an error nacks
// it and the Router decides whether it is requeued.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}
