package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes content to a temporary config file and returns its path
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// clearCredentialEnv makes sure the host environment does not leak into tests
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvRottenTomatoesAPIKey, EnvTwitchClientID, EnvTwitchClientSecret,
		EnvSearchAPIKey, EnvSearchCXKey, EnvESPNAPIKey, EnvOpenAIAPIKey, EnvPerform,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_ValidConfig_ReturnsConfigStruct(t *testing.T) {
	clearCredentialEnv(t)
	path := writeConfig(t, `
irc:
  enabled: true
  server: irc.example.net
  port: 6697
  tls: true
  nick: pokerbot
  channels: ["#poker", "holdem"]
  perform:
    - "PRIVMSG NickServ :IDENTIFY secret"
features:
  espn:
    enabled: true
    poll_interval_minutes: 3
logging:
  level: debug
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	assert.True(t, config.IRC.Enabled)
	assert.Equal(t, "irc.example.net:6697", config.IRCAddress())
	assert.True(t, config.IRC.TLS)
	assert.Equal(t, "pokerbot", config.IRC.Nick)
	assert.Equal(t, "pokerbot", config.IRC.Ident)
	assert.Equal(t, []string{"#poker", "#holdem"}, config.IRC.Channels)
	assert.Equal(t, []string{"PRIVMSG NickServ :IDENTIFY secret"}, config.IRC.Perform)
	assert.True(t, config.Features.ESPN.Enabled)
	assert.Equal(t, 3, config.Features.ESPN.PollIntervalMinutes)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearCredentialEnv(t)
	path := writeConfig(t, `
irc:
  enabled: true
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, DefaultIRCServer, config.IRC.Server)
	assert.Equal(t, DefaultIRCPort, config.IRC.Port)
	assert.Equal(t, DefaultNick, config.IRC.Nick)
	assert.Equal(t, DefaultNick, config.IRC.Ident)
	assert.Equal(t, []string{DefaultChannel}, config.IRC.Channels)
	assert.Equal(t, DefaultESPNPollInterval, config.Features.ESPN.PollIntervalMinutes)
	assert.False(t, config.Features.ESPN.Enabled)
	assert.Equal(t, DefaultCryptoRefreshPeriod, config.Features.Crypto.RefreshMinutes)
	assert.Equal(t, DefaultCryptoTop, config.Features.Crypto.Top)
	assert.Equal(t, DefaultCryptoCurrency, config.Features.Crypto.Currency)
	assert.Equal(t, DefaultAskModel, config.Features.Ask.Model)
	assert.Equal(t, DefaultLogLevel, config.Logging.Level)
	assert.True(t, config.Logging.EnableStdout)
}

func TestLoadConfig_TLSDefaultPort(t *testing.T) {
	clearCredentialEnv(t)
	path := writeConfig(t, `
irc:
  enabled: true
  tls: true
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, DefaultIRCTLSPort, config.IRC.Port)
}

func TestLoadConfig_EnvExpansion_ExpandsVariables(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("TEST_DISCORD_TOKEN", "my-secret-token")
	path := writeConfig(t, `
bots:
  discord:
    enabled: true
    token: "${TEST_DISCORD_TOKEN}"
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "my-secret-token", config.Bots["discord"].Token)
	assert.Equal(t, []string{"discord"}, config.EnabledBots())
}

func TestLoadConfig_MissingEnvVar_ReturnsError(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("TEST_UNSET_TOKEN", "")
	path := writeConfig(t, `
bots:
  discord:
    enabled: true
    token: "${TEST_UNSET_TOKEN}"
`)

	_, err := LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_UNSET_TOKEN")
}

func TestLoadConfig_CredentialsFromEnvironmentWin(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvRottenTomatoesAPIKey, "rt-from-env")
	t.Setenv(EnvTwitchClientID, "twitch-from-env")
	path := writeConfig(t, `
irc:
  enabled: true
credentials:
  rotten_tomatoes_api_key: rt-from-file
  search_api_key: search-from-file
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "rt-from-env", config.Credentials.RottenTomatoesAPIKey)
	assert.Equal(t, "twitch-from-env", config.Credentials.TwitchClientID)
	assert.Equal(t, "search-from-file", config.Credentials.SearchAPIKey)
	assert.Empty(t, config.Credentials.OpenAIAPIKey)
}

func TestLoadConfig_PerformFromEnvironment(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvPerform, "MODE pokerbot +B, PRIVMSG chanserv :op #pokerbot ,")
	path := writeConfig(t, `
irc:
  enabled: true
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"MODE pokerbot +B", "PRIVMSG chanserv :op #pokerbot"}, config.IRC.Perform)
}

func TestLoadConfigWithOverrides(t *testing.T) {
	clearCredentialEnv(t)
	path := writeConfig(t, `
irc:
  enabled: true
  nick: filebot
  channels: ["#file"]
`)

	config, err := LoadConfigWithOverrides(path, Overrides{
		Nick:                    "flagbot",
		Server:                  "irc.libera.chat",
		Channels:                []string{"flags"},
		Perform:                 []string{"AWAY :busy"},
		ESPNPollIntervalMinutes: 15,
	})

	require.NoError(t, err)
	assert.Equal(t, "flagbot", config.IRC.Nick)
	assert.Equal(t, "flagbot", config.IRC.Ident, "ident follows the overridden nick")
	assert.Equal(t, "irc.libera.chat", config.IRC.Server)
	assert.Equal(t, []string{"#flags"}, config.IRC.Channels)
	assert.Equal(t, []string{"AWAY :busy"}, config.IRC.Perform)
	assert.Equal(t, 15, config.Features.ESPN.PollIntervalMinutes)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no transport enabled",
			content: "irc:\n  enabled: false\n",
			wantErr: "at least one transport",
		},
		{
			name:    "unknown bot",
			content: "bots:\n  myspace:\n    enabled: true\n",
			wantErr: "unknown bot type 'myspace'",
		},
		{
			name:    "bad port",
			content: "irc:\n  enabled: true\n  port: 70000\n",
			wantErr: "irc.port",
		},
		{
			name:    "bad poll interval",
			content: "irc:\n  enabled: true\nfeatures:\n  espn:\n    poll_interval_minutes: -1\n",
			wantErr: "poll_interval_minutes",
		},
		{
			name:    "bad crypto refresh",
			content: "irc:\n  enabled: true\nfeatures:\n  crypto:\n    refresh_minutes: 100000\n",
			wantErr: "refresh_minutes",
		},
		{
			name:    "bad yaml",
			content: "irc: [\n",
			wantErr: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentialEnv(t)
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNormalizeChannels(t *testing.T) {
	assert.Equal(t,
		[]string{"#poker", "#holdem", "#omaha"},
		NormalizeChannels([]string{"poker", " #holdem ", "", "omaha"}))
	assert.Empty(t, NormalizeChannels(nil))
}

func TestGetBotConfig(t *testing.T) {
	config := &Config{Bots: map[string]BotConfig{
		"discord":  {Enabled: true, Token: "t"},
		"telegram": {Enabled: false},
	}}

	bot, err := config.GetBotConfig("discord")
	require.NoError(t, err)
	assert.Equal(t, "t", bot.Token)

	_, err = config.GetBotConfig("telegram")
	assert.ErrorContains(t, err, "disabled")

	_, err = config.GetBotConfig("slack")
	assert.ErrorContains(t, err, "not found")
}

func TestLoadConfig_TwitchChannelsNormalized(t *testing.T) {
	clearCredentialEnv(t)
	path := writeConfig(t, `
bots:
  twitch:
    enabled: true
    username: pokerbot
    token: oauth:abc
    channels: ["somestreamer"]
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"#somestreamer"}, config.Bots["twitch"].Channels)
}
