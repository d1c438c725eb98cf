package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/larksuite/oapi-sdk-go/v3/ws"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// FeishuBot implements BotAdapter interface for Feishu (Lark) using WebSocket long connection
type FeishuBot struct {
	handlerHolder
	AppID             string
	AppSecret         string
	EncryptKey        string // Optional, for encrypted events
	VerificationToken string // Optional, for event verification
	LarkClient        *lark.Client

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewFeishuBot creates a new Feishu bot instance
func NewFeishuBot(appID, appSecret string) *FeishuBot {
	return &FeishuBot{
		AppID:      appID,
		AppSecret:  appSecret,
		LarkClient: lark.NewClient(appID, appSecret),
		ctx:        context.Background(),
	}
}

// Start establishes WebSocket long connection to Feishu and begins listening for messages
func (f *FeishuBot) Start(messageHandler func(BotMessage)) error {
	f.SetMessageHandler(messageHandler)

	ctx, cancel := context.WithCancel(context.Background())
	f.mu.Lock()
	f.ctx, f.cancel = ctx, cancel
	f.mu.Unlock()

	logger.WithField("app_id", maskSecret(f.AppID)).Info("starting-feishu-bot-with-websocket-long-connection")

	eventDispatcher := dispatcher.NewEventDispatcher(f.VerificationToken, f.EncryptKey)
	eventDispatcher.OnP2MessageReceiveV1(f.handleMessageReceive)

	wsClient := ws.NewClient(f.AppID, f.AppSecret,
		ws.WithEventHandler(eventDispatcher),
		ws.WithLogLevel(larkcore.LogLevelInfo),
		ws.WithAutoReconnect(true),
	)

	// Start blocks for the lifetime of the connection
	go func() {
		if err := wsClient.Start(ctx); err != nil && ctx.Err() == nil {
			logger.WithFields(logrus.Fields{
				"app_id": maskSecret(f.AppID),
				"error":  err,
			}).Error("feishu-websocket-connection-failed")
		}
	}()

	time.Sleep(constants.DefaultConnectDelay)
	logger.Info("feishu-websocket-long-connection-started")
	return nil
}

// handleMessageReceive handles incoming message events from Feishu
func (f *FeishuBot) handleMessageReceive(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
	if event == nil || event.Event == nil || event.Event.Message == nil {
		return nil
	}
	ev := event.Event

	var chatID, senderID, content string
	if ev.Message.ChatId != nil {
		chatID = *ev.Message.ChatId
	}
	if ev.Message.MessageType == nil || *ev.Message.MessageType != larkim.MsgTypeText {
		return nil
	}
	if ev.Message.Content != nil {
		content = extractTextContent(*ev.Message.Content)
	}
	if ev.Sender != nil && ev.Sender.SenderId != nil && ev.Sender.SenderId.UserId != nil {
		senderID = *ev.Sender.SenderId.UserId
	}

	logger.WithFields(logrus.Fields{
		"platform": "feishu",
		"user_id":  senderID,
		"chat_id":  chatID,
		"content":  content,
	}).Debug("received-feishu-message")

	f.deliver(BotMessage{
		Platform:  "feishu",
		UserID:    senderID,
		Channel:   chatID,
		Content:   content,
		Timestamp: time.Now(),
	})
	return nil
}

// SendMessage sends a text message to a Feishu chat
func (f *FeishuBot) SendMessage(chatID, message string) error {
	if f.LarkClient == nil {
		return fmt.Errorf("feishu client not initialized")
	}
	if chatID == "" {
		return fmt.Errorf("chat ID is required for Feishu")
	}

	contentJSON, err := textContent(truncate("feishu", message, constants.MaxFeishuMessageLength))
	if err != nil {
		return err
	}

	body := larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(chatID).
		MsgType(larkim.MsgTypeText).
		Content(contentJSON).
		Build()

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(body).
		Build()

	f.mu.RLock()
	ctx := f.ctx
	f.mu.RUnlock()

	resp, err := f.LarkClient.Im.Message.Create(ctx, req)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Error("failed-to-send-message-to-feishu")
		return fmt.Errorf("failed to send message to chat %s: %w", chatID, err)
	}
	if !resp.Success() {
		logger.WithFields(logrus.Fields{
			"chat_id":    chatID,
			"code":       resp.Code,
			"msg":        resp.Msg,
			"request_id": resp.RequestId(),
		}).Error("failed-to-send-message-to-feishu-api-error")
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}
	return nil
}

// Stop cancels the WebSocket connection context
func (f *FeishuBot) Stop() error {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	logger.Info("feishu-bot-stopped")
	return nil
}

// extractTextContent extracts the text of a Feishu text message
// Feishu text message format: {"text":"actual message"}
func extractTextContent(content string) string {
	if text := gjson.Get(content, "text"); text.Exists() {
		return text.String()
	}
	return content
}

// textContent builds the content payload of a Feishu text message
func textContent(text string) (string, error) {
	data, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to encode feishu message: %w", err)
	}
	return string(data), nil
}
