package events

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/wayfare-app/wayfare/internal/infrastructure/messaging"
)

// admissionConsumer drains the audit queue and writes each admission
// decision to the log. It exists so the queue has a consumer in
// single-node deployments; real audit sinks replace it.
type admissionConsumer struct {
	rabbitmq *messaging.RabbitMQ
	logger   *zap.SugaredLogger
}

func NewAdmissionConsumer(rabbitmq *messaging.RabbitMQ, logger *zap.SugaredLogger) *admissionConsumer {
	return &admissionConsumer{
		rabbitmq: rabbitmq,
		logger:   logger,
	}
}

func (c *admissionConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.AdmissionAuditQueue, func(ctx context.Context, msg amqp.Delivery) error {
		var envelope messaging.Envelope
		if err := json.Unmarshal(msg.Body, &envelope); err != nil {
			c.logger.Errorw("failed to unmarshal admission event", "error", err)
			return err
		}

		var payload RequestEventData
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.logger.Errorw("failed to unmarshal admission event payload", "error", err)
			return err
		}

		c.logger.Infow("admission event",
			"event", msg.RoutingKey,
			"actor", envelope.ActorID,
			"group", payload.Request.GroupID,
			"requester", payload.Request.RequesterID,
			"status", payload.Request.Status,
		)
		return nil
	})
}
