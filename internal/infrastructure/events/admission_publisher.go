package events

import (
	"context"
	"encoding/json"

	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/infrastructure/messaging"
)

// AdmissionPublisher emits admission lifecycle events for downstream
// consumers (audit, notifications). Publishing is best-effort: a broker
// outage must never fail the admission decision itself.
type AdmissionPublisher interface {
	PublishRequestCreated(ctx context.Context, request domain.JoinRequest) error
	PublishRequestApproved(ctx context.Context, actorID string, request domain.JoinRequest) error
	PublishRequestRejected(ctx context.Context, actorID string, request domain.JoinRequest) error
}

type RequestEventData struct {
	Request domain.JoinRequest `json:"request"`
}

type admissionPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewAdmissionPublisher(rabbitmq *messaging.RabbitMQ) AdmissionPublisher {
	return &admissionPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *admissionPublisher) publish(ctx context.Context, routingKey, actorID string, request domain.JoinRequest) error {
	payload := RequestEventData{
		Request: request,
	}

	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, messaging.Envelope{
		ActorID: actorID,
		Data:    eventJSON,
	})
}

func (p *admissionPublisher) PublishRequestCreated(ctx context.Context, request domain.JoinRequest) error {
	return p.publish(ctx, messaging.EventRequestCreated, request.RequesterID, request)
}

func (p *admissionPublisher) PublishRequestApproved(ctx context.Context, actorID string, request domain.JoinRequest) error {
	return p.publish(ctx, messaging.EventRequestApproved, actorID, request)
}

func (p *admissionPublisher) PublishRequestRejected(ctx context.Context, actorID string, request domain.JoinRequest) error {
	return p.publish(ctx, messaging.EventRequestRejected, actorID, request)
}

// NoopPublisher is used when the broker is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRequestCreated(context.Context, domain.JoinRequest) error {
	return nil
}

func (NoopPublisher) PublishRequestApproved(context.Context, string, domain.JoinRequest) error {
	return nil
}

func (NoopPublisher) PublishRequestRejected(context.Context, string, domain.JoinRequest) error {
	return nil
}
