package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	AdmissionExchange  = "admission"
	DeadLetterExchange = "dlx"

	AdmissionAuditQueue = "admission_audit"
)

// Routing keys for admission lifecycle events.
const (
	EventRequestCreated  = "admission.requested"
	EventRequestApproved = "admission.approved"
	EventRequestRejected = "admission.rejected"
)

// Envelope is the message structure published to AMQP.
type Envelope struct {
	ActorID string `json:"actorId"`
	Data    []byte `json:"data"`
}

type RabbitMQ struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

func NewRabbitMQ(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %v", err)
	}

	rmq := &RabbitMQ{
		conn:    conn,
		Channel: ch,
	}

	if err := rmq.declareTopology(); err != nil {
		rmq.Close()
		return nil, err
	}

	return rmq, nil
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		r.Channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

func (r *RabbitMQ) declareTopology() error {
	if err := r.Channel.ExchangeDeclare(
		AdmissionExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %v", err)
	}

	routingKeys := []string{EventRequestCreated, EventRequestApproved, EventRequestRejected}
	return r.declareAndBindQueue(AdmissionAuditQueue, routingKeys, AdmissionExchange)
}

func (r *RabbitMQ) declareAndBindQueue(queueName string, routingKeys []string, exchange string) error {
	args := amqp.Table{
		"x-dead-letter-exchange": DeadLetterExchange,
	}

	q, err := r.Channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		args,      // arguments with DLX config
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %v", queueName, err)
	}

	for _, key := range routingKeys {
		if err := r.Channel.QueueBind(
			q.Name,   // queue name
			key,      // routing key
			exchange, // exchange
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %v", queueName, err)
		}
	}

	return nil
}

func (r *RabbitMQ) PublishMessage(ctx context.Context, routingKey string, message Envelope) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return r.Channel.PublishWithContext(ctx,
		AdmissionExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

type HandlerFunc func(ctx context.Context, msg amqp.Delivery) error

func (r *RabbitMQ) ConsumeMessages(queueName string, handler HandlerFunc) error {
	deliveries, err := r.Channel.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %v", queueName, err)
	}

	for delivery := range deliveries {
		if err := handler(context.Background(), delivery); err != nil {
			_ = delivery.Nack(false, false) // dead-letter it
			continue
		}
		_ = delivery.Ack(false)
	}

	return nil
}
