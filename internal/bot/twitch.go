package bot

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/adeithe/go-twitch/irc"
	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// TwitchBot implements BotAdapter for Twitch chat
type TwitchBot struct {
	handlerHolder
	username string
	token    string
	channels []string

	mu   sync.RWMutex
	conn *irc.Conn
}

// NewTwitchBot creates a new Twitch chat bot instance
func NewTwitchBot(username, token string, channels []string) *TwitchBot {
	return &TwitchBot{
		username: username,
		token:    token,
		channels: channels,
	}
}

// Start logs in, joins the configured channels and begins listening for messages
func (t *TwitchBot) Start(messageHandler func(BotMessage)) error {
	t.SetMessageHandler(messageHandler)

	if len(t.channels) == 0 {
		return fmt.Errorf("no twitch channels configured")
	}
	if t.username == "" || t.token == "" {
		return fmt.Errorf("twitch username and token are required")
	}

	logger.WithFields(logrus.Fields{
		"username": t.username,
		"token":    maskSecret(t.token),
		"channels": t.channels,
	}).Info("starting-twitch-bot")

	conn := &irc.Conn{}
	if err := conn.SetLogin(t.username, t.token); err != nil {
		return fmt.Errorf("failed to set twitch login: %w", err)
	}
	conn.OnMessage(t.handleMessage)

	if err := conn.Connect(); err != nil {
		return fmt.Errorf("failed to connect to twitch chat: %w", err)
	}

	joins := make([]string, 0, len(t.channels))
	for _, ch := range t.channels {
		joins = append(joins, twitchChannel(ch))
	}
	if err := conn.Join(joins...); err != nil {
		conn.Close()
		return fmt.Errorf("failed to join twitch channels: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	logger.WithField("channels", joins).Info("twitch-bot-connected")
	return nil
}

// handleMessage maps a Twitch chat message to a BotMessage
func (t *TwitchBot) handleMessage(cm irc.ChatMessage) {
	if strings.EqualFold(cm.Sender.DisplayName, t.username) {
		return
	}

	logger.WithFields(logrus.Fields{
		"platform": "twitch",
		"user":     cm.Sender.DisplayName,
		"channel":  cm.Channel,
		"content":  cm.Text,
	}).Debug("received-twitch-message")

	t.deliver(BotMessage{
		Platform:  "twitch",
		UserID:    strconv.FormatInt(cm.Sender.ID, 10),
		Channel:   cm.Channel,
		Content:   cm.Text,
		Timestamp: time.Now(),
	})
}

// SendMessage says message in a Twitch channel
func (t *TwitchBot) SendMessage(channel, message string) error {
	t.mu.RLock()
	conn := t.conn
	t.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return fmt.Errorf("twitch connection not initialized")
	}
	if channel == "" {
		return fmt.Errorf("channel is required for Twitch")
	}

	message = truncate("twitch", singleLine(message), constants.MaxIRCMessageLength)
	if err := conn.Say(twitchChannel(channel), message); err != nil {
		logger.WithFields(logrus.Fields{
			"channel": channel,
			"error":   err,
		}).Error("failed-to-send-message-to-twitch")
		return fmt.Errorf("failed to send message to channel %s: %w", channel, err)
	}
	return nil
}

// Stop closes the Twitch chat connection
func (t *TwitchBot) Stop() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	logger.Info("twitch-bot-stopped")
	return nil
}

// twitchChannel strips the IRC channel sigil; the chat client takes bare login names
func twitchChannel(channel string) string {
	return strings.ToLower(strings.TrimPrefix(channel, "#"))
}
