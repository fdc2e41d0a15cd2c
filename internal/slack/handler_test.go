package slack_test

import (
	"context"
	"testing"
	"time"

	"github.com/lunchybot/lunchy/internal/mocks"
	"github.com/lunchybot/lunchy/internal/slack"
)

func TestNewHandler_Validation(t *testing.T) {
	gateway := mocks.NewMockGateway()

	if _, err := slack.NewHandler(nil, &mocks.MockDispatcher{}); err == nil {
		t.Error("expected error for nil gateway")
	}
	if _, err := slack.NewHandler(gateway, nil); err == nil {
		t.Error("expected error for nil dispatcher")
	}
	if _, err := slack.NewHandler(gateway, &mocks.MockDispatcher{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandler_Admit(t *testing.T) {
	gateway := mocks.NewMockGateway()
	gateway.Self = "UBOT"

	h, err := slack.NewHandler(gateway, &mocks.MockDispatcher{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		msg  slack.IncomingMessage
		want bool
	}{
		{
			name: "general channel is ignored",
			msg:  slack.IncomingMessage{ChannelName: "general", Text: "<@UBOT> hi"},
			want: false,
		},
		{
			name: "empty text is ignored",
			msg:  slack.IncomingMessage{ChannelName: "lunch", Text: ""},
			want: false,
		},
		{
			name: "channel message without mention is ignored",
			msg:  slack.IncomingMessage{ChannelName: "lunch", Text: "pizza anyone?"},
			want: false,
		},
		{
			name: "channel message mentioning another user is ignored",
			msg:  slack.IncomingMessage{ChannelName: "lunch", Text: "<@UOTHER> pizza"},
			want: false,
		},
		{
			name: "channel message opening with bot mention is admitted",
			msg:  slack.IncomingMessage{ChannelName: "lunch", Text: "<@UBOT>: pizza"},
			want: true,
		},
		{
			name: "leading whitespace before the mention is fine",
			msg:  slack.IncomingMessage{ChannelName: "lunch", Text: "  <@UBOT> pizza"},
			want: true,
		},
		{
			name: "direct message needs no mention",
			msg:  slack.IncomingMessage{IsDirect: true, Text: "pizza"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Admit(tt.msg); got != tt.want {
				t.Errorf("Admit(%q in %q) = %v, want %v",
					tt.msg.Text, tt.msg.ChannelName, got, tt.want)
			}
		})
	}
}

func TestHandler_DispatchesAdmittedMessages(t *testing.T) {
	gateway := mocks.NewMockGateway()
	dispatcher := &mocks.MockDispatcher{}

	h, err := slack.NewHandler(gateway, dispatcher)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.Start(ctx)
	}()

	gateway.Incoming <- slack.IncomingMessage{UserID: "U1", IsDirect: true, Text: "pizza"}
	gateway.Incoming <- slack.IncomingMessage{UserID: "U2", ChannelName: "general", Text: "<@UBOT> hi"}
	gateway.Incoming <- slack.IncomingMessage{UserID: "U3", ChannelName: "lunch", Text: "no mention"}

	// Give the processor a moment to drain the channel.
	deadline := time.After(time.Second)
	for len(dispatcher.Dispatched()) < 1 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for dispatch")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	got := dispatcher.Dispatched()
	if len(got) != 1 {
		t.Fatalf("expected 1 dispatched message, got %d", len(got))
	}
	if got[0].UserID != "U1" {
		t.Errorf("dispatched wrong message: %+v", got[0])
	}
}
