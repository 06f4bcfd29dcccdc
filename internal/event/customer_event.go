package event

import (
	"context"
	"time"
)

type CustomerEventPayload struct {
	CustomerID    int64      `json:"customerId"`
	Name          string     `json:"name,omitempty"`
	Address       string     `json:"address,omitempty"`
	PaymentStatus string     `json:"paymentStatus,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error
	PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error
}

// NoopPublisher discards every event. It is used when messaging is disabled.
type NoopPublisher struct{}

var _ EventPublisher = NoopPublisher{}

func (NoopPublisher) PublishCustomerCreated(context.Context, CustomerCreatedEvent) error { return nil }

func (NoopPublisher) PublishCustomerUpdated(context.Context, CustomerUpdatedEvent) error { return nil }

func (NoopPublisher) PublishCustomerDeleted(context.Context, CustomerDeletedEvent) error { return nil }
