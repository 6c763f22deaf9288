package service

import (
	"context"
	"fmt"
	"gatepass/pkg/kafka"
	"gatepass/pkg/logger"
	"gatepass/pkg/metrics"
	"gatepass/pkg/model"
	"gatepass/pkg/sms"
)

const EventTypeOTPRequested = "otp.requested"

// Dispatcher hands a freshly issued code to whatever delivers it.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, event model.OTPRequested) error
}

// Sender is satisfied by *kafka.Producer.
type Sender interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaDispatcher struct {
	sender Sender
	source string
}

// NewKafkaDispatcher publishes codes for the notifier to deliver. Messages
// are keyed by phone so a phone's codes stay ordered.
func NewKafkaDispatcher(sender Sender, source string) Dispatcher {
	return &kafkaDispatcher{sender: sender, source: source}
}

func (d *kafkaDispatcher) Name() string {
	return "kafka"
}

func (d *kafkaDispatcher) Dispatch(ctx context.Context, event model.OTPRequested) error {
	builder := kafka.NewMessage().
		WithKey(event.Phone).
		WithValue(event).
		WithEventType(EventTypeOTPRequested).
		WithSchemaVersion("1").
		WithSource(d.source).
		WithCorrelationID(logger.RequestIDFromContext(ctx))
	if err := builder.Err(); err != nil {
		return fmt.Errorf("failed to encode otp event: %w", err)
	}
	return d.sender.Publish(ctx, builder.Build())
}

type smsDispatcher struct {
	gateway sms.Gateway
	metrics *metrics.Metrics
}

// NewSMSDispatcher sends the code inline, used when Kafka is disabled.
func NewSMSDispatcher(gateway sms.Gateway, m *metrics.Metrics) Dispatcher {
	return &smsDispatcher{gateway: gateway, metrics: m}
}

func (d *smsDispatcher) Name() string {
	return "sms:" + d.gateway.Name()
}

func (d *smsDispatcher) Dispatch(ctx context.Context, event model.OTPRequested) error {
	err := d.gateway.Send(ctx, event.Phone, sms.OTPMessage(event.Code))
	d.metrics.SMSDelivery(d.gateway.Name(), err)
	return err
}
