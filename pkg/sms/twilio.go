package sms

import (
	"context"
	"errors"
	"fmt"
	"gatepass/pkg/logger"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the slice of the Twilio REST client used here.
type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

type TwilioGateway struct {
	api  messageCreator
	from string
	log  *logger.Logger
}

func NewTwilioGateway(accountSID, authToken, from string, log *logger.Logger) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioGateway{
		api:  client.Api,
		from: from,
		log:  log,
	}
}

func (g *TwilioGateway) Name() string {
	return "twilio"
}

func (g *TwilioGateway) Send(ctx context.Context, to, body string) error {
	if to == "" {
		return ErrInvalidDestination
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(g.from)
	params.SetBody(body)

	resp, err := g.api.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			return &DeliveryError{Status: restErr.Status, Code: restErr.Code, Message: restErr.Message}
		}
		return fmt.Errorf("twilio: send message: %w", err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	g.log.FromContext(ctx).Info("SMS sent", "gateway", g.Name(), "to", to, "sid", sid)
	return nil
}

// DeliveryError is a provider rejection with its HTTP status.
type DeliveryError struct {
	Status  int
	Code    int
	Message string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("sms delivery failed (status %d, code %d): %s", e.Status, e.Code, e.Message)
}

func (e *DeliveryError) HTTPStatus() int {
	return e.Status
}
