package slack

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	slackapi "github.com/slack-go/slack"
)

const incomingChannelSize = 100

// Client implements Gateway on the Slack RTM API.
type Client struct {
	api           *slackapi.Client
	rtm           *slackapi.RTM
	logger        *slog.Logger
	autoReconnect bool
	autoMark      bool

	mu        sync.RWMutex
	selfID    string
	userNames map[string]string
	channels  map[string]channelInfo
}

type channelInfo struct {
	name     string
	isDirect bool
}

var _ Gateway = (*Client)(nil)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithAutoReconnect controls whether the RTM stream is kept alive after an
// unintentional disconnect.
func WithAutoReconnect(enabled bool) ClientOption {
	return func(c *Client) {
		c.autoReconnect = enabled
	}
}

// WithAutoMark controls whether handled messages are marked as read.
func WithAutoMark(enabled bool) ClientOption {
	return func(c *Client) {
		c.autoMark = enabled
	}
}

// NewClient creates a Slack gateway from an auth token.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("slack token is required")
	}

	api := slackapi.New(token)

	c := &Client{
		api:           api,
		rtm:           api.NewRTM(),
		logger:        slog.Default().With(slog.String("component", "slack")),
		autoReconnect: true,
		autoMark:      true,
		userNames:     make(map[string]string),
		channels:      make(map[string]channelInfo),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Send posts a message to the given channel.
func (c *Client) Send(ctx context.Context, channelID string, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID,
		slackapi.MsgOptionText(text, false),
		slackapi.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return nil
}

// SelfID returns the bot's own user ID, empty until the connection opens.
func (c *Client) SelfID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selfID
}

// Subscribe connects to the RTM stream and returns translated messages.
// The RTM connection manages its own reconnects.
func (c *Client) Subscribe(ctx context.Context) (<-chan IncomingMessage, error) {
	go c.rtm.ManageConnection()

	out := make(chan IncomingMessage, incomingChannelSize)

	go func() {
		defer close(out)
		defer func() { _ = c.rtm.Disconnect() }()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-c.rtm.IncomingEvents:
				if !ok {
					return
				}
				c.handleEvent(ctx, ev, out)
			}
		}
	}()

	return out, nil
}

func (c *Client) handleEvent(ctx context.Context, ev slackapi.RTMEvent, out chan<- IncomingMessage) {
	switch data := ev.Data.(type) {
	case *slackapi.ConnectedEvent:
		c.mu.Lock()
		c.selfID = data.Info.User.ID
		c.mu.Unlock()
		c.logger.Info("connected to slack",
			slog.String("self", data.Info.User.Name),
			slog.String("team", data.Info.Team.Name))

	case *slackapi.MessageEvent:
		msg, ok := c.translate(ctx, data)
		if !ok {
			return
		}
		if c.autoMark {
			if err := c.api.MarkConversationContext(ctx, data.Channel, data.Timestamp); err != nil {
				c.logger.Debug("failed to mark conversation",
					slog.String("channel", data.Channel), slog.Any("error", err))
			}
		}
		select {
		case out <- msg:
		default:
			c.logger.Warn("dropping message, incoming buffer full",
				slog.String("user", msg.UserID))
		}

	case *slackapi.DisconnectedEvent:
		if !data.Intentional && !c.autoReconnect {
			c.logger.Warn("disconnected and auto-reconnect is off")
			_ = c.rtm.Disconnect()
		}

	case *slackapi.RTMError:
		c.logger.Error("rtm error", slog.String("error", data.Error()))

	case *slackapi.InvalidAuthEvent:
		c.logger.Error("invalid slack credentials")
	}
}

// translate converts a raw message event into an IncomingMessage. Non-plain
// messages (edits, joins, bot echoes) are dropped here so downstream only ever
// sees user text.
func (c *Client) translate(ctx context.Context, ev *slackapi.MessageEvent) (IncomingMessage, bool) {
	if ev.SubType != "" || ev.Text == "" || ev.User == "" {
		return IncomingMessage{}, false
	}
	if ev.User == c.SelfID() {
		return IncomingMessage{}, false
	}

	ch, err := c.channelByID(ctx, ev.Channel)
	if err != nil {
		c.logger.Warn("failed to resolve channel",
			slog.String("channel", ev.Channel), slog.Any("error", err))
		return IncomingMessage{}, false
	}

	return IncomingMessage{
		UserID:      ev.User,
		UserName:    c.userNameByID(ctx, ev.User),
		ChannelID:   ev.Channel,
		ChannelName: ch.name,
		Text:        ev.Text,
		IsDirect:    ch.isDirect,
	}, true
}

func (c *Client) userNameByID(ctx context.Context, userID string) string {
	c.mu.RLock()
	name, ok := c.userNames[userID]
	c.mu.RUnlock()
	if ok {
		return name
	}

	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		c.logger.Warn("failed to resolve user name",
			slog.String("user", userID), slog.Any("error", err))
		return userID
	}

	c.mu.Lock()
	c.userNames[userID] = user.Name
	c.mu.Unlock()
	return user.Name
}

func (c *Client) channelByID(ctx context.Context, channelID string) (channelInfo, error) {
	c.mu.RLock()
	info, ok := c.channels[channelID]
	c.mu.RUnlock()
	if ok {
		return info, nil
	}

	ch, err := c.api.GetConversationInfoContext(ctx, &slackapi.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return channelInfo{}, fmt.Errorf("failed to get conversation info: %w", err)
	}

	info = channelInfo{name: ch.Name, isDirect: ch.IsIM}
	c.mu.Lock()
	c.channels[channelID] = info
	c.mu.Unlock()
	return info, nil
}

// ChannelIDByName resolves a channel name to its ID by walking the
// conversations list.
func (c *Client) ChannelIDByName(ctx context.Context, name string) (string, error) {
	params := &slackapi.GetConversationsParameters{
		Types: []string{"public_channel", "private_channel"},
	}

	for {
		channels, cursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return "", fmt.Errorf("failed to list conversations: %w", err)
		}

		for _, ch := range channels {
			if ch.Name == name {
				return ch.ID, nil
			}
		}

		if cursor == "" {
			return "", fmt.Errorf("channel %q not found", name)
		}
		params.Cursor = cursor
	}
}
