package bot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// IRCOptions configures an IRC connection
type IRCOptions struct {
	Server   string // host:port
	TLS      bool
	Nick     string
	Ident    string
	RealName string
	Channels []string
	// Perform holds raw IRC lines sent after registration, before joining channels
	Perform []string
}

// ircConn is the part of ircevent.Connection the adapter uses
type ircConn interface {
	Privmsg(target, text string) error
	SendRaw(line string) error
	Join(channel string) error
	Connected() bool
	CurrentNick() string
	Quit()
}

// IRCBot implements BotAdapter for a classic IRC network
type IRCBot struct {
	handlerHolder
	opts IRCOptions

	mu   sync.RWMutex
	conn ircConn
}

// NewIRCBot creates a new IRC bot instance
func NewIRCBot(opts IRCOptions) *IRCBot {
	return &IRCBot{opts: opts}
}

// Start connects to the server and runs the read loop in the background
func (b *IRCBot) Start(messageHandler func(BotMessage)) error {
	b.SetMessageHandler(messageHandler)

	logger.WithFields(logrus.Fields{
		"server":   b.opts.Server,
		"tls":      b.opts.TLS,
		"nick":     b.opts.Nick,
		"channels": b.opts.Channels,
	}).Info("starting-irc-bot")

	conn := &ircevent.Connection{
		Server:   b.opts.Server,
		UseTLS:   b.opts.TLS,
		Nick:     b.opts.Nick,
		User:     b.opts.Ident,
		RealName: b.opts.RealName,
		Timeout:  constants.DefaultUpstreamTimeout,
	}

	conn.AddConnectCallback(func(ircmsg.Message) {
		b.onConnect(conn)
	})
	conn.AddCallback("PRIVMSG", func(m ircmsg.Message) {
		b.handlePrivmsg(m)
	})

	if err := conn.Connect(); err != nil {
		return fmt.Errorf("failed to connect to irc server %s: %w", b.opts.Server, err)
	}

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()

	go func() {
		conn.Loop()
		logger.WithField("server", b.opts.Server).Info("irc-connection-loop-stopped")
	}()

	logger.WithField("server", b.opts.Server).Info("irc-connection-started")
	return nil
}

// onConnect sends the perform lines then joins the configured channels
func (b *IRCBot) onConnect(conn ircConn) {
	for _, line := range b.opts.Perform {
		if err := conn.SendRaw(line); err != nil {
			logger.WithFields(logrus.Fields{
				"line":  line,
				"error": err,
			}).Warn("irc-perform-command-failed")
		}
	}
	for _, channel := range b.opts.Channels {
		if err := conn.Join(channel); err != nil {
			logger.WithFields(logrus.Fields{
				"channel": channel,
				"error":   err,
			}).Warn("irc-join-failed")
			continue
		}
		logger.WithField("channel", channel).Info("irc-channel-joined")
	}
}

// handlePrivmsg turns a channel PRIVMSG into a BotMessage
func (b *IRCBot) handlePrivmsg(m ircmsg.Message) {
	if len(m.Params) < 2 {
		return
	}
	target, text := m.Params[0], m.Params[1]

	// only channel traffic is routed
	if !strings.HasPrefix(target, "#") && !strings.HasPrefix(target, "&") {
		return
	}

	nick := m.Nick()
	b.mu.RLock()
	conn := b.conn
	b.mu.RUnlock()
	own := b.opts.Nick
	if conn != nil {
		own = conn.CurrentNick()
	}
	if strings.EqualFold(nick, own) {
		return
	}

	logger.WithFields(logrus.Fields{
		"platform": "irc",
		"nick":     nick,
		"channel":  target,
		"content":  text,
	}).Debug("received-irc-message")

	b.deliver(BotMessage{
		Platform:  "irc",
		UserID:    nick,
		Channel:   target,
		Content:   text,
		Timestamp: time.Now(),
	})
}

// SendMessage sends one PRIVMSG to channel
func (b *IRCBot) SendMessage(channel, message string) error {
	b.mu.RLock()
	conn := b.conn
	b.mu.RUnlock()

	if conn == nil || !conn.Connected() {
		return fmt.Errorf("irc connection not initialized")
	}
	if channel == "" {
		return fmt.Errorf("channel is required for IRC")
	}

	message = truncate("irc", singleLine(message), constants.MaxIRCMessageLength)
	if err := conn.Privmsg(channel, message); err != nil {
		logger.WithFields(logrus.Fields{
			"channel": channel,
			"error":   err,
		}).Error("failed-to-send-message-to-irc")
		return fmt.Errorf("failed to send message to channel %s: %w", channel, err)
	}

	logger.WithField("channel", channel).Debug("message-sent-to-irc")
	return nil
}

// Stop sends QUIT and ends the read loop
func (b *IRCBot) Stop() error {
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()

	if conn != nil {
		conn.Quit()
	}
	logger.Info("irc-bot-stopped")
	return nil
}
