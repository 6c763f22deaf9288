// Package sms delivers text messages through a pluggable gateway.
package sms

import (
	"context"
	"errors"
	"fmt"
	"gatepass/pkg/logger"
	"net"
)

var ErrInvalidDestination = errors.New("sms destination is required")

type Gateway interface {
	Name() string
	Send(ctx context.Context, to, body string) error
}

// OTPMessage is the body sent with a one-time code.
func OTPMessage(code string) string {
	return fmt.Sprintf("Secure Code: %s\nUse this OTP to complete your registration.\nNever share this code with anyone.", code)
}

// Temporary reports whether a delivery failure is worth retrying.
func Temporary(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var statusErr interface{ HTTPStatus() int }
	if errors.As(err, &statusErr) {
		status := statusErr.HTTPStatus()
		return status == 429 || status >= 500
	}
	return false
}

type logGateway struct {
	log *logger.Logger
}

// NewLogGateway writes messages to the log instead of sending them. It is
// the development fallback when no SMS provider is configured.
func NewLogGateway(log *logger.Logger) Gateway {
	return &logGateway{log: log}
}

func (g *logGateway) Name() string {
	return "log"
}

func (g *logGateway) Send(ctx context.Context, to, body string) error {
	if to == "" {
		return ErrInvalidDestination
	}
	g.log.FromContext(ctx).Info("SMS (log gateway)", "to", to, "body", body)
	return nil
}
