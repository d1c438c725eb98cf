package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// TelegramBot implements BotAdapter interface for Telegram using long polling
type TelegramBot struct {
	handlerHolder
	mu     sync.RWMutex
	token  string
	bot    *tgbotapi.BotAPI
	cancel context.CancelFunc
}

// NewTelegramBot creates a new Telegram bot instance
func NewTelegramBot(token string) *TelegramBot {
	return &TelegramBot{token: token}
}

// Start establishes long polling connection to Telegram and begins listening for messages
func (t *TelegramBot) Start(messageHandler func(BotMessage)) error {
	t.SetMessageHandler(messageHandler)

	logger.WithField("token", maskSecret(t.token)).Info("starting-telegram-bot-with-long-polling")

	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.bot = bot
	t.cancel = cancel
	t.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"bot_username": bot.Self.UserName,
		"bot_id":       bot.Self.ID,
	}).Info("telegram-bot-initialized-successfully")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(constants.DefaultPollTimeout.Seconds())
	updates := bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					logger.Info("telegram-updates-channel-closed")
					return
				}
				t.handleMessage(update.Message)
			}
		}
	}()

	return nil
}

// handleMessage maps a Telegram text message to a BotMessage
func (t *TelegramBot) handleMessage(message *tgbotapi.Message) {
	if message == nil || message.Text == "" || message.Chat == nil {
		return
	}

	var userID string
	if message.From != nil {
		if message.From.IsBot {
			return
		}
		userID = strconv.FormatInt(message.From.ID, 10)
	}
	chatID := strconv.FormatInt(message.Chat.ID, 10)

	logger.WithFields(logrus.Fields{
		"platform":  "telegram",
		"user_id":   userID,
		"chat_id":   chatID,
		"chat_type": message.Chat.Type,
		"content":   message.Text,
	}).Debug("received-telegram-message")

	t.deliver(BotMessage{
		Platform:  "telegram",
		UserID:    userID,
		Channel:   chatID,
		Content:   message.Text,
		Timestamp: time.Now(),
	})
}

// SendMessage sends a plain text message to a Telegram chat
func (t *TelegramBot) SendMessage(chatID, message string) error {
	t.mu.RLock()
	bot := t.bot
	t.mu.RUnlock()

	if bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}
	if chatID == "" {
		return fmt.Errorf("chat ID is required for Telegram")
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID format: %w", err)
	}

	msg := tgbotapi.NewMessage(chatIDInt, truncate("telegram", message, constants.MaxTelegramMessageLength))
	if _, err := bot.Send(msg); err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Error("failed-to-send-message-to-telegram")
		return fmt.Errorf("failed to send message to chat %s: %w", chatID, err)
	}
	return nil
}

// Stop closes the Telegram long polling connection and cleans up resources
func (t *TelegramBot) Stop() error {
	t.mu.Lock()
	bot := t.bot
	cancel := t.cancel
	t.bot = nil
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if bot != nil {
		bot.StopReceivingUpdates()
	}

	logger.Info("telegram-bot-stopped")
	return nil
}
