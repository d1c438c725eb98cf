package core

// Config represents the complete pokerbot configuration structure.
// It is built once by LoadConfig and treated as read-only afterwards.
type Config struct {
	IRC         IRCConfig            `yaml:"irc"`
	Bots        map[string]BotConfig `yaml:"bots"`
	Credentials Credentials          `yaml:"credentials"`
	Features    FeaturesConfig       `yaml:"features"`
	Logging     LoggingConfig        `yaml:"logging"`
}

// IRCConfig holds the connection parameters of the primary IRC network
type IRCConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port"`
	TLS      bool     `yaml:"tls"`
	Nick     string   `yaml:"nick"`
	Ident    string   `yaml:"ident"`    // <ident>@hostmask, defaults to Nick
	RealName string   `yaml:"realname"` // defaults to Nick
	Channels []string `yaml:"channels"`
	Perform  []string `yaml:"perform"` // raw commands sent after connecting, before joining
}

// BotConfig represents the configuration of one non-IRC transport
type BotConfig struct {
	Enabled           bool     `yaml:"enabled"`
	Token             string   `yaml:"token"`              // Discord/Telegram/Slack bot token, Twitch oauth token
	AppToken          string   `yaml:"app_token"`          // Slack: app-level token for socket mode
	AppID             string   `yaml:"app_id"`             // Feishu app ID, DingTalk client ID
	AppSecret         string   `yaml:"app_secret"`         // Feishu app secret, DingTalk client secret
	Username          string   `yaml:"username"`           // Twitch: bot login
	ChannelID         string   `yaml:"channel_id"`         // Discord: default channel
	Channels          []string `yaml:"channels"`           // Twitch: channels to join
	EncryptKey        string   `yaml:"encrypt_key"`        // Feishu: event encryption key (optional)
	VerificationToken string   `yaml:"verification_token"` // Feishu: verification token (optional)
}

// Credentials are the per-feature API keys. Each field can be overridden by
// the environment variable named in its comment.
type Credentials struct {
	RottenTomatoesAPIKey string `yaml:"rotten_tomatoes_api_key"` // RT_API_KEY
	TwitchClientID       string `yaml:"twitch_client_id"`        // TWITCH_CLIENT_ID
	TwitchClientSecret   string `yaml:"twitch_client_secret"`    // TWITCH_CLIENT_SECRET
	SearchAPIKey         string `yaml:"search_api_key"`          // SEARCH_API_KEY
	SearchCXKey          string `yaml:"search_cx_key"`           // SEARCH_CX_KEY
	ESPNAPIKey           string `yaml:"espn_api_key"`            // ESPN_API_KEY
	OpenAIAPIKey         string `yaml:"openai_api_key"`          // OPENAI_API_KEY
}

// FeaturesConfig holds feature flags and refresh intervals
type FeaturesConfig struct {
	ESPN   ESPNConfig   `yaml:"espn"`
	Crypto CryptoConfig `yaml:"crypto"`
	Ask    AskConfig    `yaml:"ask"`
}

// ESPNConfig configures the scores command
type ESPNConfig struct {
	Enabled             bool `yaml:"enabled"`
	PollIntervalMinutes int  `yaml:"poll_interval_minutes"`
}

// CryptoConfig configures the market data command
type CryptoConfig struct {
	RefreshMinutes int    `yaml:"refresh_minutes"`
	Top            int    `yaml:"top"`
	Currency       string `yaml:"currency"`
}

// AskConfig configures the completion command
type AskConfig struct {
	Model string `yaml:"model"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	File         string `yaml:"file"`          // Log file path
	MaxSize      int    `yaml:"max_size"`      // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups"`   // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age"`       // Maximum days to retain (default: 30)
	Compress     bool   `yaml:"compress"`      // Whether to compress old logs
	EnableStdout bool   `yaml:"enable_stdout"` // Also output to stdout (default: true)
}

// Overrides are command line values that take precedence over the config file
type Overrides struct {
	Nick                    string
	Ident                   string
	Server                  string
	Channels                []string
	Perform                 []string
	ESPNPollIntervalMinutes int
}
