// Package bot provides transport adapters for the chat networks pokerbot joins.
//
// Every adapter turns platform traffic into BotMessage values and sends plain
// text replies back to the channel a message came from. Adapters know nothing
// about commands; routing happens in the command package.
//
// # Supported Platforms
//
//   - IRC: plain or TLS connection, perform commands then channel joins
//   - Twitch: Twitch chat over its IRC gateway
//   - Discord: WebSocket gateway
//   - Telegram: long polling for message updates
//   - Slack: socket mode
//   - Feishu/Lark: WebSocket long connection
//   - DingTalk: stream mode, replies through the per-conversation session webhook
//
// # Usage
//
//	ircBot := bot.NewIRCBot(bot.IRCOptions{Server: "irc.gamesurge.net:6667", Nick: "pokerbot"})
//	err := ircBot.Start(func(msg bot.BotMessage) {
//	    fmt.Printf("%s: %s\n", msg.UserID, msg.Content)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ircBot.SendMessage("#pokerbot", "hello")
//	ircBot.Stop()
//
// # Thread Safety
//
// All adapters guard their connection state with a mutex. SendMessage may be
// called from many handler goroutines at once, and the message handler may be
// called from the transport's own goroutines.
package bot

import (
	"sync"
	"time"
)

// BotAdapter defines the interface for bot adapters
type BotAdapter interface {
	// Start establishes the connection and begins delivering messages to messageHandler
	Start(messageHandler func(BotMessage)) error

	// SendMessage sends one line of text to a channel on the platform.
	// Adapters truncate to platform limits.
	SendMessage(channel, message string) error

	// Stop closes the connection and cleans up resources
	Stop() error
}

// BotMessage represents a message received from a platform
type BotMessage struct {
	Platform  string // irc/twitch/discord/telegram/slack/feishu/dingtalk
	UserID    string // sender nick or platform user id
	Channel   string // channel the reply goes back to
	Content   string
	Timestamp time.Time
}

// handlerHolder stores the message callback shared by every adapter
type handlerHolder struct {
	mu      sync.RWMutex
	handler func(BotMessage)
}

// SetMessageHandler sets the message handler in a thread-safe manner
func (h *handlerHolder) SetMessageHandler(handler func(BotMessage)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

// GetMessageHandler gets the message handler in a thread-safe manner
func (h *handlerHolder) GetMessageHandler() func(BotMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handler
}

// deliver passes msg to the handler if one is set
func (h *handlerHolder) deliver(msg BotMessage) {
	if handler := h.GetMessageHandler(); handler != nil {
		handler(msg)
	}
}
