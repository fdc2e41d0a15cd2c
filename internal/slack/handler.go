package slack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// excludedChannel is the channel the bot never reacts in.
const excludedChannel = "general"

// Handler reads gateway messages, applies the admission filter, and forwards
// admitted messages to the dispatcher.
type Handler struct {
	gateway    Gateway
	dispatcher Dispatcher
	logger     *slog.Logger
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// HandlerOption configures the handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets a custom logger.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a message handler.
func NewHandler(gateway Gateway, dispatcher Dispatcher, opts ...HandlerOption) (*Handler, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	h := &Handler{
		gateway:    gateway,
		dispatcher: dispatcher,
		logger:     slog.Default().With(slog.String("component", "slack.handler")),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// Start subscribes to the gateway and processes messages until the context is
// canceled.
func (h *Handler) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return fmt.Errorf("handler already running")
	}
	h.running = true
	h.mu.Unlock()

	messages, err := h.gateway.Subscribe(ctx)
	if err != nil {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
		return fmt.Errorf("failed to subscribe to messages: %w", err)
	}

	h.logger.Info("slack handler started")

	h.wg.Add(1)
	go h.processMessages(ctx, messages)

	<-ctx.Done()

	h.mu.Lock()
	h.running = false
	h.mu.Unlock()

	h.wg.Wait()
	h.logger.Info("slack handler stopped")
	return nil
}

func (h *Handler) processMessages(ctx context.Context, messages <-chan IncomingMessage) {
	defer h.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				h.logger.Debug("message channel closed")
				return
			}
			h.handleMessage(ctx, msg)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg IncomingMessage) {
	if !h.Admit(msg) {
		return
	}

	h.logger.Debug("dispatching message",
		slog.String("user", msg.UserID),
		slog.String("channel", msg.ChannelName))

	h.dispatcher.Dispatch(ctx, msg)
}

// Admit applies the admission filter: nothing from the general channel, no
// empty text, and outside direct messages the text must open with a mention of
// the bot itself.
func (h *Handler) Admit(msg IncomingMessage) bool {
	if msg.ChannelName == excludedChannel {
		return false
	}
	if msg.Text == "" {
		return false
	}
	if msg.IsDirect {
		return true
	}

	mention := "<@" + h.gateway.SelfID() + ">"
	return strings.HasPrefix(strings.TrimSpace(msg.Text), mention)
}
