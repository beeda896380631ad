package notify_service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type mockSender struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (m *mockSender) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	m.params = params
	if m.err != nil {
		return nil, m.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

var testCredentials = TwilioCredentials{
	AccountSid: "AC123",
	AuthToken:  "token",
	FromNumber: "+15550000001",
	ToNumber:   "+15550000002",
}

func TestNotifyFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "sent"},
		{name: "twilio error", err: errors.New("401 unauthorized"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &mockSender{err: tt.err}
			notifier := NewSMSNotifierWithSender(logger, sender, testCredentials)

			err := notifier.NotifyFailure(context.Background(), "exec-1", "no video was produced")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NotifyFailure() error = %v, wantErr %v", err, tt.wantErr)
			}

			if sender.params == nil {
				t.Fatal("expected CreateMessage to be called")
			}
			if *sender.params.To != testCredentials.ToNumber || *sender.params.From != testCredentials.FromNumber {
				t.Errorf("unexpected numbers: to=%s from=%s", *sender.params.To, *sender.params.From)
			}
			if !strings.Contains(*sender.params.Body, "exec-1") || !strings.Contains(*sender.params.Body, "no video was produced") {
				t.Errorf("unexpected body %q", *sender.params.Body)
			}
		})
	}
}

func TestFailureMessageTruncated(t *testing.T) {
	body := FailureMessage("exec-1", strings.Repeat("x", 1000))
	if len([]rune(body)) != maxSMSBody {
		t.Errorf("expected %d runes, got %d", maxSMSBody, len([]rune(body)))
	}
	if !strings.HasSuffix(body, "...") {
		t.Errorf("expected ellipsis, got %q", body[len(body)-5:])
	}
}

func TestCredentialsConfigured(t *testing.T) {
	if !testCredentials.Configured() {
		t.Error("expected full credentials to be configured")
	}
	partial := testCredentials
	partial.ToNumber = ""
	if partial.Configured() {
		t.Error("expected missing recipient to be unconfigured")
	}
}

func TestNotifyFailure_Cancelled(t *testing.T) {
	sender := &mockSender{}
	notifier := NewSMSNotifierWithSender(slog.New(slog.NewTextHandler(io.Discard, nil)), sender, testCredentials)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := notifier.NotifyFailure(ctx, "exec-1", "failed"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if sender.params != nil {
		t.Error("no message should be sent after cancellation")
	}
}
