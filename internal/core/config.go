// Package core provides the configuration and the engine of pokerbot.
//
// The engine connects chat transports (IRC, Twitch, Discord, Telegram, Slack,
// Feishu, DingTalk) to the command router. It handles:
//
//   - Configuration loading and validation (from YAML files and environment)
//   - Receiving messages from every enabled transport
//   - Routing them to command handlers
//   - Sending handler replies back through the originating transport
//   - Graceful shutdown
//
// # Configuration
//
// Configuration is loaded from a YAML file with the following main sections:
//
//   - irc: primary IRC network connection
//   - bots: other chat transports
//   - credentials: per-feature API keys (overridable from the environment)
//   - features: feature flags and refresh intervals
//   - logging: log configuration
//
// # Example Configuration
//
//	irc:
//	  enabled: true
//	  server: irc.gamesurge.net
//	  nick: pokerbot
//	  channels: ["#pokerbot"]
//	bots:
//	  discord:
//	    enabled: true
//	    token: "${DISCORD_TOKEN}"
//	features:
//	  espn:
//	    enabled: true
package core

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIRCServer           = "irc.gamesurge.net"
	DefaultIRCPort             = 6667
	DefaultIRCTLSPort          = 6697
	DefaultNick                = "testbot"
	DefaultChannel             = "#pokerbot"
	DefaultESPNPollInterval    = 10 // minutes
	DefaultCryptoRefreshPeriod = 5  // minutes
	DefaultCryptoTop           = 5
	DefaultCryptoCurrency      = "usd"
	DefaultAskModel            = "gpt-4o-mini"
	DefaultLogLevel            = "info"
	DefaultLogCompress         = true
	DefaultLogEnableStdout     = true
	maxPollIntervalMinutes     = 24 * 60
	performEnvSeparator        = ","
)

// Environment variables that override credentials. Handlers name them in
// their replies when a credential is missing.
const (
	EnvRottenTomatoesAPIKey = "RT_API_KEY"
	EnvTwitchClientID       = "TWITCH_CLIENT_ID"
	EnvTwitchClientSecret   = "TWITCH_CLIENT_SECRET"
	EnvSearchAPIKey         = "SEARCH_API_KEY"
	EnvSearchCXKey          = "SEARCH_CX_KEY"
	EnvESPNAPIKey           = "ESPN_API_KEY"
	EnvOpenAIAPIKey         = "OPENAI_API_KEY"
	EnvPerform              = "PERFORM"
)

// Supported transport names for the bots section
var knownBots = map[string]struct{}{
	"twitch":   {},
	"discord":  {},
	"telegram": {},
	"slack":    {},
	"feishu":   {},
	"dingtalk": {},
}

// LoadConfig loads configuration from file, the environment and a .env file
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithOverrides(configPath, Overrides{})
}

// LoadConfigWithOverrides loads configuration and applies command line overrides
// before defaults and validation
func LoadConfigWithOverrides(configPath string, overrides Overrides) (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	applyEnvCredentials(config)
	applyOverrides(config, overrides)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// ParseConfig expands ${VAR} references and decodes YAML, without defaults
func ParseConfig(data []byte) (*Config, error) {
	expandedData, err := expandEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

// expandEnv replaces ${VAR_NAME} patterns with environment variable values
func expandEnv(input string) (string, error) {
	var missingVars []string
	result := os.Expand(input, func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		missingVars = append(missingVars, key)
		return ""
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return result, nil
}

// applyEnvCredentials lets environment variables win over the config file
func applyEnvCredentials(config *Config) {
	overlay := []struct {
		env string
		dst *string
	}{
		{EnvRottenTomatoesAPIKey, &config.Credentials.RottenTomatoesAPIKey},
		{EnvTwitchClientID, &config.Credentials.TwitchClientID},
		{EnvTwitchClientSecret, &config.Credentials.TwitchClientSecret},
		{EnvSearchAPIKey, &config.Credentials.SearchAPIKey},
		{EnvSearchCXKey, &config.Credentials.SearchCXKey},
		{EnvESPNAPIKey, &config.Credentials.ESPNAPIKey},
		{EnvOpenAIAPIKey, &config.Credentials.OpenAIAPIKey},
	}
	for _, o := range overlay {
		if val := strings.TrimSpace(os.Getenv(o.env)); val != "" {
			*o.dst = val
		}
	}

	if len(config.IRC.Perform) == 0 {
		config.IRC.Perform = splitList(os.Getenv(EnvPerform), performEnvSeparator)
	}
}

func applyOverrides(config *Config, o Overrides) {
	if o.Nick != "" {
		config.IRC.Nick = o.Nick
	}
	if o.Ident != "" {
		config.IRC.Ident = o.Ident
	}
	if o.Server != "" {
		config.IRC.Server = o.Server
	}
	if len(o.Channels) > 0 {
		config.IRC.Channels = append([]string(nil), o.Channels...)
	}
	if len(o.Perform) > 0 {
		config.IRC.Perform = append([]string(nil), o.Perform...)
	}
	if o.ESPNPollIntervalMinutes != 0 {
		config.Features.ESPN.PollIntervalMinutes = o.ESPNPollIntervalMinutes
	}
}

// validateConfig applies defaults and performs basic validation
func validateConfig(config *Config) error {
	// IRC defaults
	if config.IRC.Server == "" {
		config.IRC.Server = DefaultIRCServer
	}
	if config.IRC.Port == 0 {
		config.IRC.Port = DefaultIRCPort
		if config.IRC.TLS {
			config.IRC.Port = DefaultIRCTLSPort
		}
	}
	if config.IRC.Port < 1 || config.IRC.Port > 65535 {
		return fmt.Errorf("irc.port must be between 1 and 65535 (got %d)", config.IRC.Port)
	}
	if config.IRC.Nick == "" {
		config.IRC.Nick = DefaultNick
	}
	if config.IRC.Ident == "" {
		config.IRC.Ident = config.IRC.Nick
	}
	if config.IRC.RealName == "" {
		config.IRC.RealName = config.IRC.Nick
	}
	config.IRC.Channels = NormalizeChannels(config.IRC.Channels)
	if len(config.IRC.Channels) == 0 {
		config.IRC.Channels = []string{DefaultChannel}
	}

	// Feature defaults
	if config.Features.ESPN.PollIntervalMinutes == 0 {
		config.Features.ESPN.PollIntervalMinutes = DefaultESPNPollInterval
	}
	if config.Features.ESPN.PollIntervalMinutes < 1 || config.Features.ESPN.PollIntervalMinutes > maxPollIntervalMinutes {
		return fmt.Errorf("features.espn.poll_interval_minutes must be between 1 and %d (got %d)",
			maxPollIntervalMinutes, config.Features.ESPN.PollIntervalMinutes)
	}
	if config.Features.Crypto.RefreshMinutes == 0 {
		config.Features.Crypto.RefreshMinutes = DefaultCryptoRefreshPeriod
	}
	if config.Features.Crypto.RefreshMinutes < 1 || config.Features.Crypto.RefreshMinutes > maxPollIntervalMinutes {
		return fmt.Errorf("features.crypto.refresh_minutes must be between 1 and %d (got %d)",
			maxPollIntervalMinutes, config.Features.Crypto.RefreshMinutes)
	}
	if config.Features.Crypto.Top <= 0 {
		config.Features.Crypto.Top = DefaultCryptoTop
	}
	if config.Features.Crypto.Currency == "" {
		config.Features.Crypto.Currency = DefaultCryptoCurrency
	}
	if config.Features.Ask.Model == "" {
		config.Features.Ask.Model = DefaultAskModel
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = constants.DefaultLogMaxSize
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = constants.DefaultLogMaxBackups
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = constants.DefaultLogMaxAge
	}
	if !config.Logging.Compress {
		config.Logging.Compress = DefaultLogCompress
	}
	if !config.Logging.EnableStdout {
		config.Logging.EnableStdout = DefaultLogEnableStdout
	}

	for name, bot := range config.Bots {
		if _, ok := knownBots[name]; !ok {
			return fmt.Errorf("unknown bot type '%s'", name)
		}
		if name == "twitch" {
			bot.Channels = NormalizeChannels(bot.Channels)
			config.Bots[name] = bot
		}
	}

	if !config.IRC.Enabled && len(config.EnabledBots()) == 0 {
		return fmt.Errorf("at least one transport (irc or a bot) must be enabled")
	}

	return nil
}

// NormalizeChannels trims names, drops empties and adds a leading '#'
func NormalizeChannels(channels []string) []string {
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		if !strings.HasPrefix(ch, "#") {
			ch = "#" + ch
		}
		out = append(out, ch)
	}
	return out
}

func splitList(raw, sep string) []string {
	var out []string
	for _, item := range strings.Split(raw, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GetBotConfig retrieves configuration for a specific bot
func (c *Config) GetBotConfig(botType string) (BotConfig, error) {
	bot, exists := c.Bots[botType]
	if !exists {
		return BotConfig{}, fmt.Errorf("bot type %s not found in configuration", botType)
	}

	if !bot.Enabled {
		return BotConfig{}, fmt.Errorf("bot type %s is disabled", botType)
	}

	return bot, nil
}

// EnabledBots returns the names of enabled bots
func (c *Config) EnabledBots() []string {
	var names []string
	for name, bot := range c.Bots {
		if bot.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IRCAddress returns host:port of the IRC server
func (c *Config) IRCAddress() string {
	return fmt.Sprintf("%s:%d", c.IRC.Server, c.IRC.Port)
}
