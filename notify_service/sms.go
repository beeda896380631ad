package notify_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// maxSMSBody keeps failure notices within a couple of SMS segments.
const maxSMSBody = 300

// MessageSender is the part of the Twilio API client used to send texts.
type MessageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioCredentials struct {
	AccountSid string
	AuthToken  string
	FromNumber string
	ToNumber   string
}

// Configured reports whether every credential needed to send a text is set.
func (c TwilioCredentials) Configured() bool {
	return c.AccountSid != "" && c.AuthToken != "" && c.FromNumber != "" && c.ToNumber != ""
}

// SMSNotifier texts an operator when a run ends without a video.
type SMSNotifier struct {
	logger      *slog.Logger
	sender      MessageSender
	credentials TwilioCredentials
}

func NewSMSNotifier(logger *slog.Logger, credentials TwilioCredentials) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: credentials.AccountSid,
		Password: credentials.AuthToken,
	})
	return NewSMSNotifierWithSender(logger, client.Api, credentials)
}

func NewSMSNotifierWithSender(logger *slog.Logger, sender MessageSender, credentials TwilioCredentials) *SMSNotifier {
	return &SMSNotifier{
		logger:      logger,
		sender:      sender,
		credentials: credentials,
	}
}

func (s *SMSNotifier) NotifyFailure(ctx context.Context, executionID, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := FailureMessage(executionID, message)
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.credentials.ToNumber)
	params.SetFrom(s.credentials.FromNumber)
	params.SetBody(body)

	resp, err := s.sender.CreateMessage(params)
	if err != nil {
		s.logger.Error("Failed to send SMS",
			slog.String("error", err.Error()),
			slog.String("to", s.credentials.ToNumber))
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Info("Failure notice sent",
		slog.String("execution_id", executionID),
		slog.String("message_sid", sid))
	return nil
}

// FailureMessage is the text sent for a failed run.
func FailureMessage(executionID, message string) string {
	body := fmt.Sprintf("storystudio run %s failed: %s", executionID, message)
	runes := []rune(body)
	if len(runes) > maxSMSBody {
		body = string(runes[:maxSMSBody-3]) + "..."
	}
	return body
}
