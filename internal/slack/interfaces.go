// Package slack provides the chat gateway: connection management, message
// delivery, and the admission filter for inbound messages.
package slack

import "context"

// IncomingMessage is a plain-text chat message after gateway translation.
type IncomingMessage struct {
	UserID      string
	UserName    string
	ChannelID   string
	ChannelName string
	Text        string
	IsDirect    bool
}

// Gateway abstracts the chat network.
type Gateway interface {
	// Send posts a message to the given channel.
	Send(ctx context.Context, channelID string, text string) error

	// Subscribe returns a channel of incoming messages. The channel is closed
	// when the connection shuts down.
	Subscribe(ctx context.Context) (<-chan IncomingMessage, error)

	// SelfID returns the bot's own user identifier, once connected.
	SelfID() string

	// ChannelIDByName resolves a channel name to its identifier.
	ChannelIDByName(ctx context.Context, name string) (string, error)
}

// Dispatcher receives admitted messages, keyed by user.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg IncomingMessage)
}
