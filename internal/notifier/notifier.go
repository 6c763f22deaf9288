// Package notifier consumes otp.requested events and delivers the codes
// through an SMS gateway.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"gatepass/pkg/kafka"
	"gatepass/pkg/logger"
	"gatepass/pkg/metrics"
	"gatepass/pkg/model"
	"gatepass/pkg/sms"
	"time"
)

const eventTypeOTPRequested = "otp.requested"

type Notifier struct {
	gateway sms.Gateway
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func New(gateway sms.Gateway, m *metrics.Metrics, log *logger.Logger) *Notifier {
	return &Notifier{
		gateway: gateway,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Handle is a kafka.MessageHandler. Gateway failures that may clear up on
// their own come back as transient errors so the consumer retries them.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != "" && eventType != eventTypeOTPRequested {
		n.log.Debug("Skipping unrelated event", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	var event model.OTPRequested
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode otp event", err)
	}
	if event.Phone == "" || event.Code == "" {
		return kafka.NewPermanentError("otp event is missing phone or code", nil)
	}

	log := n.log.With(
		"event_id", msg.GetEventID(),
		"correlation_id", msg.GetCorrelationID(),
	)

	if !event.ExpiresAt.IsZero() && !n.now().Before(event.ExpiresAt) {
		log.Warn("Dropping expired verification code", "expires_at", event.ExpiresAt)
		return nil
	}

	err := n.gateway.Send(ctx, event.Phone, sms.OTPMessage(event.Code))
	n.metrics.SMSDelivery(n.gateway.Name(), err)
	if err == nil {
		log.Info("Verification code delivered", "gateway", n.gateway.Name())
		return nil
	}

	if errors.Is(err, sms.ErrInvalidDestination) || !sms.Temporary(err) {
		return kafka.NewPermanentError(fmt.Sprintf("sms via %s rejected", n.gateway.Name()), err)
	}
	return kafka.NewTransientError(fmt.Sprintf("sms via %s failed", n.gateway.Name()), err)
}
