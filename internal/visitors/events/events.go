package events

import (
	"context"
	"fmt"
	"gatepass/pkg/kafka"
	"gatepass/pkg/logger"
	"gatepass/pkg/model"
	"time"
)

const (
	TypeRegistered = "visitor.registered"
	TypeCheckedOut = "visitor.checked_out"

	SchemaVersion = "1"
)

// VisitorEvent is the payload written to the visitor events topic.
type VisitorEvent struct {
	GroupID        string     `json:"groupId"`
	VisitorName    string     `json:"visitorName"`
	CompanionCount int        `json:"companionCount"`
	InTime         time.Time  `json:"inTime"`
	OutTime        *time.Time `json:"outTime,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, group *model.VisitorGroup) error
}

// Sender is satisfied by *kafka.Producer.
type Sender interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	sender Sender
	source string
}

func NewKafkaPublisher(sender Sender, source string) Publisher {
	return &kafkaPublisher{sender: sender, source: source}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, group *model.VisitorGroup) error {
	builder := kafka.NewMessage().
		WithKey(group.GroupID).
		WithValue(VisitorEvent{
			GroupID:        group.GroupID,
			VisitorName:    group.PrimaryVisitor.VisitorName,
			CompanionCount: len(group.Companions),
			InTime:         group.InTime,
			OutTime:        group.OutTime,
		}).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(logger.RequestIDFromContext(ctx))
	if err := builder.Err(); err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	return p.sender.Publish(ctx, builder.Build())
}

type nopPublisher struct{}

// NewNopPublisher is used when Kafka is disabled.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, *model.VisitorGroup) error {
	return nil
}
