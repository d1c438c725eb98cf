package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/open-dingtalk/dingtalk-stream-sdk-go/chatbot"
	"github.com/open-dingtalk/dingtalk-stream-sdk-go/client"
	"github.com/sirupsen/logrus"
)

// dingTalkReplier is the part of chatbot.ChatbotReplier the adapter uses
type dingTalkReplier interface {
	SimpleReplyText(ctx context.Context, sessionWebhook string, content []byte) error
}

// DingTalkBot implements BotAdapter interface for DingTalk using stream mode.
// Replies go through the session webhook of the latest message in each conversation.
type DingTalkBot struct {
	handlerHolder
	mu           sync.RWMutex
	clientID     string
	clientSecret string
	streamClient *client.StreamClient
	replier      dingTalkReplier
	webhooks     map[string]string // conversation id -> session webhook
	cancel       context.CancelFunc
}

// NewDingTalkBot creates a new DingTalk bot instance
func NewDingTalkBot(clientID, clientSecret string) *DingTalkBot {
	return &DingTalkBot{
		clientID:     clientID,
		clientSecret: clientSecret,
		replier:      chatbot.NewChatbotReplier(),
		webhooks:     make(map[string]string),
	}
}

// Start establishes the stream connection to DingTalk and begins listening for messages
func (d *DingTalkBot) Start(messageHandler func(BotMessage)) error {
	d.SetMessageHandler(messageHandler)

	logger.WithField("client_id", maskSecret(d.clientID)).Info("starting-dingtalk-bot-with-websocket-long-connection")

	credential := client.NewAppCredentialConfig(d.clientID, d.clientSecret)
	streamClient := client.NewStreamClient(client.WithAppCredential(credential))
	streamClient.RegisterChatBotCallbackRouter(d.handleMessageReceive)

	ctx, cancel := context.WithCancel(context.Background())
	d.mu.Lock()
	d.streamClient = streamClient
	d.cancel = cancel
	d.mu.Unlock()

	go func() {
		if err := streamClient.Start(ctx); err != nil && ctx.Err() == nil {
			logger.WithFields(logrus.Fields{
				"client_id": maskSecret(d.clientID),
				"error":     err,
			}).Error("dingtalk-websocket-connection-failed")
		}
	}()

	time.Sleep(constants.DefaultConnectDelay)
	logger.Info("dingtalk-websocket-long-connection-started")
	return nil
}

// handleMessageReceive records the session webhook and forwards text messages
func (d *DingTalkBot) handleMessageReceive(ctx context.Context, data *chatbot.BotCallbackDataModel) ([]byte, error) {
	if data == nil {
		return []byte(""), nil
	}

	if data.SessionWebhook != "" {
		d.mu.Lock()
		d.webhooks[data.ConversationId] = data.SessionWebhook
		d.mu.Unlock()
	}

	if data.Msgtype != "text" {
		return []byte(""), nil
	}

	logger.WithFields(logrus.Fields{
		"platform":        "dingtalk",
		"conversation_id": data.ConversationId,
		"sender_staff_id": data.SenderStaffId,
		"content":         data.Text.Content,
	}).Debug("received-dingtalk-message")

	d.deliver(BotMessage{
		Platform:  "dingtalk",
		UserID:    data.SenderStaffId,
		Channel:   data.ConversationId,
		Content:   data.Text.Content,
		Timestamp: time.Now(),
	})

	return []byte(""), nil
}

// SendMessage replies to a DingTalk conversation through its session webhook
func (d *DingTalkBot) SendMessage(conversationID, message string) error {
	if conversationID == "" {
		return fmt.Errorf("conversation ID is required for DingTalk")
	}

	d.mu.RLock()
	webhook := d.webhooks[conversationID]
	d.mu.RUnlock()
	if webhook == "" {
		return fmt.Errorf("no session webhook for conversation %s", conversationID)
	}

	message = truncate("dingtalk", message, constants.MaxDingTalkMessageLength)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultUpstreamTimeout)
	defer cancel()
	if err := d.replier.SimpleReplyText(ctx, webhook, []byte(message)); err != nil {
		logger.WithFields(logrus.Fields{
			"conversation_id": conversationID,
			"error":           err,
		}).Error("failed-to-send-message-to-dingtalk")
		return fmt.Errorf("failed to send message to conversation %s: %w", conversationID, err)
	}
	return nil
}

// Stop closes the DingTalk stream connection and cleans up resources
func (d *DingTalkBot) Stop() error {
	d.mu.Lock()
	cancel := d.cancel
	streamClient := d.streamClient
	d.cancel = nil
	d.streamClient = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if streamClient != nil {
		streamClient.Close()
	}

	logger.Info("dingtalk-bot-stopped")
	return nil
}
