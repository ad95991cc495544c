package notify

import (
	"context"
	"fmt"
	"strings"

	"remindly-backend/internal/config"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender sends SMS through the Twilio messages API
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender returns nil when Twilio is not configured. With an API key
// (SK...) the key authenticates and the account SID selects the account.
func NewTwilioSender(cfg config.TwilioConfig) *TwilioSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		return nil
	}

	params := twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	}
	if strings.HasPrefix(cfg.APIKey, "SK") {
		params.Username = cfg.APIKey
		params.AccountSid = cfg.AccountSID
	}

	return &TwilioSender{
		client: twilio.NewRestClientWithParams(params),
		from:   cfg.FromNumber,
	}
}

// Send sends body to the phone number and returns the message SID.
// The Twilio client has no context support; ctx is checked before the call.
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send sms: %w", err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
