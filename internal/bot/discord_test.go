package bot

import (
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDiscordSession is a mock implementation of DiscordSessionInterface for testing
type MockDiscordSession struct {
	shouldFailOnOpen bool
	shouldFailOnSend bool
	openCalled       bool
	closed           bool
	sentMessages     []SentMessage
	handler          interface{}
}

type SentMessage struct {
	Channel string
	Message string
}

func (m *MockDiscordSession) AddHandler(handler interface{}) func() {
	m.handler = handler
	return func() {}
}

func (m *MockDiscordSession) Open() error {
	m.openCalled = true
	if m.shouldFailOnOpen {
		return errors.New("failed to open discord connection")
	}
	return nil
}

func (m *MockDiscordSession) Close() error {
	m.closed = true
	return nil
}

func (m *MockDiscordSession) ChannelMessageSend(channel, message string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.shouldFailOnSend {
		return nil, errors.New("failed to send message")
	}
	m.sentMessages = append(m.sentMessages, SentMessage{Channel: channel, Message: message})
	return &discordgo.Message{ID: "msg-id"}, nil
}

// SimulateMessage invokes the registered handler as the gateway would
func (m *MockDiscordSession) SimulateMessage(msg *discordgo.MessageCreate) {
	if handlerFunc, ok := m.handler.(func(*discordgo.Session, *discordgo.MessageCreate)); ok {
		handlerFunc(nil, msg)
	}
}

func newMockedDiscordBot(mock *MockDiscordSession, channelID string) *DiscordBot {
	b := NewDiscordBot("test-token-value", channelID)
	b.newSession = func(string) (DiscordSessionInterface, error) { return mock, nil }
	return b
}

func discordMessage(channel, author, content string, isBot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: channel,
		Content:   content,
		Author:    &discordgo.User{ID: author, Username: author, Bot: isBot},
	}}
}

func TestDiscordBot_StartAndReceive(t *testing.T) {
	mock := &MockDiscordSession{}
	b := newMockedDiscordBot(mock, "")

	var got []BotMessage
	require.NoError(t, b.Start(func(m BotMessage) { got = append(got, m) }))
	assert.True(t, mock.openCalled)

	mock.SimulateMessage(discordMessage("c1", "u1", "!help", false))
	mock.SimulateMessage(discordMessage("c1", "bot", "!help", true))

	require.Len(t, got, 1)
	assert.Equal(t, BotMessage{
		Platform:  "discord",
		UserID:    "u1",
		Channel:   "c1",
		Content:   "!help",
		Timestamp: got[0].Timestamp,
	}, got[0])
}

func TestDiscordBot_ChannelFilter(t *testing.T) {
	mock := &MockDiscordSession{}
	b := newMockedDiscordBot(mock, "c1")

	var got []BotMessage
	require.NoError(t, b.Start(func(m BotMessage) { got = append(got, m) }))

	mock.SimulateMessage(discordMessage("c2", "u1", "!help", false))
	mock.SimulateMessage(discordMessage("c1", "u1", "!help", false))

	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].Channel)
}

func TestDiscordBot_StartOpenFails(t *testing.T) {
	mock := &MockDiscordSession{shouldFailOnOpen: true}
	b := newMockedDiscordBot(mock, "")

	err := b.Start(func(BotMessage) {})

	assert.ErrorContains(t, err, "failed to open discord connection")
	assert.ErrorContains(t, b.SendMessage("c1", "hi"), "not initialized")
}

func TestDiscordBot_SendMessage(t *testing.T) {
	mock := &MockDiscordSession{}
	b := newMockedDiscordBot(mock, "default-channel")
	require.NoError(t, b.Start(func(BotMessage) {}))

	require.NoError(t, b.SendMessage("c1", "hello"))
	require.NoError(t, b.SendMessage("", "fallback"))
	require.NoError(t, b.SendMessage("c1", strings.Repeat("x", 2500)))

	require.Len(t, mock.sentMessages, 3)
	assert.Equal(t, SentMessage{Channel: "c1", Message: "hello"}, mock.sentMessages[0])
	assert.Equal(t, "default-channel", mock.sentMessages[1].Channel)
	assert.Len(t, mock.sentMessages[2].Message, 2000)

	mock.shouldFailOnSend = true
	assert.ErrorContains(t, b.SendMessage("c1", "hi"), "failed to send message")
}

func TestDiscordBot_SendMessage_NoSession(t *testing.T) {
	b := NewDiscordBot("test-token", "test-channel")
	err := b.SendMessage("", "test message")
	assert.ErrorContains(t, err, "not initialized")
}

func TestDiscordBot_Stop(t *testing.T) {
	mock := &MockDiscordSession{}
	b := newMockedDiscordBot(mock, "")
	require.NoError(t, b.Start(func(BotMessage) {}))

	require.NoError(t, b.Stop())
	assert.True(t, mock.closed)
	assert.NoError(t, b.Stop())
}
