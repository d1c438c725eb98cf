package constants

import "time"

// Message length limits for different platforms
const (
	// MaxIRCMessageLength keeps a PRIVMSG line under the 512 byte protocol limit
	// once the prefix and target are added by the server
	MaxIRCMessageLength = 400
	// MaxDiscordMessageLength is Discord's message character limit
	MaxDiscordMessageLength = 2000
	// MaxTelegramMessageLength is Telegram's message character limit
	MaxTelegramMessageLength = 4096
	// MaxSlackMessageLength is Slack's recommended text limit
	MaxSlackMessageLength = 4000
	// MaxFeishuMessageLength is Feishu's message character limit
	MaxFeishuMessageLength = 20000
	// MaxDingTalkMessageLength is DingTalk's message character limit
	MaxDingTalkMessageLength = 20000
)

// Timeouts and delays
const (
	// DefaultUpstreamTimeout bounds every call a handler makes to an external API
	DefaultUpstreamTimeout = 10 * time.Second
	// DefaultPollTimeout is the timeout for long polling operations
	DefaultPollTimeout = 60 * time.Second
	// DefaultConnectDelay is how long websocket adapters wait for the connection to settle
	DefaultConnectDelay = 2 * time.Second
	// DefaultShutdownTimeout bounds how long Stop waits for running handlers
	DefaultShutdownTimeout = 15 * time.Second
)

// Message buffer sizes
const (
	// MessageChannelBufferSize is the buffer size for the incoming message channel
	MessageChannelBufferSize = 100
)

// Reply limits
const (
	// MaxStreamsListed is the number of streams listed for most games
	MaxStreamsListed = 3
	// MaxScoreLines is the maximum number of games reported by the scores handler
	MaxScoreLines = 10
	// MaxAskLines is the maximum number of lines relayed from a completion
	MaxAskLines = 5
	// MaxUpstreamBodySize limits how much of an upstream response is read
	MaxUpstreamBodySize = 1 << 20
)

// Secret masking
const (
	// MinSecretLengthForMasking is the minimum secret length to show a prefix and suffix
	MinSecretLengthForMasking = 10
	// SecretMaskPrefixLength is the length of prefix to show before masking
	SecretMaskPrefixLength = 4
	// SecretMaskSuffixLength is the length of suffix to show after masking
	SecretMaskSuffixLength = 4
)

// Logging defaults
const (
	// DefaultLogMaxSize is the default maximum log file size in MB
	DefaultLogMaxSize = 100
	// DefaultLogMaxBackups is the default number of rotated files kept
	DefaultLogMaxBackups = 5
	// DefaultLogMaxAge is the default maximum number of days to retain old logs
	DefaultLogMaxAge = 30
)
