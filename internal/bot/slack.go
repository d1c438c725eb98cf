package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// slackPoster is the part of slack.Client the adapter uses to reply
type slackPoster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackBot implements BotAdapter for Slack using socket mode
type SlackBot struct {
	handlerHolder
	botToken string
	appToken string

	mu     sync.RWMutex
	client slackPoster
	cancel context.CancelFunc
}

// NewSlackBot creates a new Slack bot instance
func NewSlackBot(botToken, appToken string) *SlackBot {
	return &SlackBot{botToken: botToken, appToken: appToken}
}

// Start opens the socket mode connection and begins listening for messages
func (s *SlackBot) Start(messageHandler func(BotMessage)) error {
	s.SetMessageHandler(messageHandler)

	if s.botToken == "" || s.appToken == "" {
		return fmt.Errorf("slack bot token and app token are required")
	}

	logger.WithFields(logrus.Fields{
		"token":     maskSecret(s.botToken),
		"app_token": maskSecret(s.appToken),
	}).Info("starting-slack-bot-with-socket-mode")

	client := slack.New(s.botToken, slack.OptionAppLevelToken(s.appToken))
	socketClient := socketmode.New(client)
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.client = client
	s.cancel = cancel
	s.mu.Unlock()

	go s.consume(socketClient)
	go func() {
		if err := socketClient.RunContext(ctx); err != nil && ctx.Err() == nil {
			logger.WithField("error", err).Error("slack-socket-mode-connection-failed")
		}
	}()

	return nil
}

// consume acknowledges socket mode envelopes and forwards channel messages
func (s *SlackBot) consume(socketClient *socketmode.Client) {
	for evt := range socketClient.Events {
		if evt.Request != nil {
			socketClient.Ack(*evt.Request)
		}
		if evt.Type != socketmode.EventTypeEventsAPI {
			continue
		}
		eventsAPI, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok || eventsAPI.Type != slackevents.CallbackEvent {
			continue
		}
		if inner, ok := eventsAPI.InnerEvent.Data.(*slackevents.MessageEvent); ok {
			s.handleMessage(inner)
		}
	}
}

// handleMessage maps a Slack message event to a BotMessage
func (s *SlackBot) handleMessage(ev *slackevents.MessageEvent) {
	// skip bot messages and edits
	if ev == nil || ev.BotID != "" || ev.SubType != "" {
		return
	}

	logger.WithFields(logrus.Fields{
		"platform": "slack",
		"user_id":  ev.User,
		"channel":  ev.Channel,
		"content":  ev.Text,
	}).Debug("received-slack-message")

	s.deliver(BotMessage{
		Platform:  "slack",
		UserID:    ev.User,
		Channel:   ev.Channel,
		Content:   ev.Text,
		Timestamp: time.Now(),
	})
}

// SendMessage posts a message to a Slack channel
func (s *SlackBot) SendMessage(channel, message string) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("slack client not initialized")
	}
	if channel == "" {
		return fmt.Errorf("channel is required for Slack")
	}

	message = truncate("slack", message, constants.MaxSlackMessageLength)
	if _, _, err := client.PostMessage(channel, slack.MsgOptionText(message, false)); err != nil {
		logger.WithFields(logrus.Fields{
			"channel": channel,
			"error":   err,
		}).Error("failed-to-send-message-to-slack")
		return fmt.Errorf("failed to send message to channel %s: %w", channel, err)
	}
	return nil
}

// Stop closes the socket mode connection
func (s *SlackBot) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.client = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	logger.Info("slack-bot-stopped")
	return nil
}
