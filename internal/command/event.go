package command

import (
	"context"
	"time"
)

// Destination identifies where a reply goes: a channel on a platform.
type Destination struct {
	Platform string // irc/twitch/discord/telegram/slack/feishu/dingtalk
	Channel  string // channel, chat or conversation ID
}

// Event is one incoming chat message. Transports build it once; nothing
// downstream modifies it.
type Event struct {
	Destination Destination
	Sender      string
	Text        string
	ReceivedAt  time.Time
}

// Sink emits one line of reply text. Implementations must be safe for
// concurrent use; the dispatch core never splits, batches or reorders lines.
type Sink interface {
	Send(ctx context.Context, dest Destination, text string) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, dest Destination, text string) error

// Send calls f(ctx, dest, text).
func (f SinkFunc) Send(ctx context.Context, dest Destination, text string) error {
	return f(ctx, dest, text)
}
