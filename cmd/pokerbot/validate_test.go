package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/keepmind9/pokerbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		core.EnvRottenTomatoesAPIKey, core.EnvTwitchClientID, core.EnvTwitchClientSecret,
		core.EnvSearchAPIKey, core.EnvSearchCXKey, core.EnvESPNAPIKey, core.EnvOpenAIAPIKey, core.EnvPerform,
	} {
		t.Setenv(key, "")
	}
}

func TestValidateConfigDetails_BotCredentials(t *testing.T) {
	cfg := &core.Config{Bots: map[string]core.BotConfig{
		"twitch":   {Enabled: true},
		"slack":    {Enabled: true, Token: "xoxb"},
		"feishu":   {Enabled: true, AppID: "a"},
		"discord":  {Enabled: true},
		"telegram": {Enabled: true, Token: "ok"},
	}}

	errs, _ := validateConfigDetails(cfg)

	assert.ElementsMatch(t, []string{
		"Bot 'twitch' needs username and token",
		"Bot 'twitch' has no channels to join",
		"Bot 'slack' needs token and app_token",
		"Bot 'feishu' needs app_id and app_secret",
		"Bot 'discord' is enabled but has no token configured",
	}, errs)
}

func TestValidateConfigDetails_MissingKeysAreWarnings(t *testing.T) {
	cfg := &core.Config{
		IRC:         core.IRCConfig{Enabled: true},
		Credentials: core.Credentials{RottenTomatoesAPIKey: "rt", TwitchClientID: "id", TwitchClientSecret: "s"},
		Features:    core.FeaturesConfig{ESPN: core.ESPNConfig{Enabled: true}},
	}

	errs, warnings := validateConfigDetails(cfg)

	assert.Empty(t, errs)
	assert.Contains(t, warnings, "SEARCH_API_KEY is not set - !google will not work")
	assert.Contains(t, warnings, "OPENAI_API_KEY is not set - !ask will not work")
	assert.Contains(t, warnings, "ESPN_API_KEY is not set - !scores will not work")
	assert.NotContains(t, warnings, "RT_API_KEY is not set - !rt will not work")
}

func TestValidateFile(t *testing.T) {
	clearCredentialEnv(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("irc:\n  enabled: true\n"), 0600))
	result, cfg := validateFile(good)
	assert.True(t, result.Valid)
	assert.True(t, result.IRC)
	assert.NotNil(t, cfg)
	assert.NotEmpty(t, result.Warnings)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("irc:\n  enabled: false\n"), 0600))
	result, cfg = validateFile(bad)
	assert.False(t, result.Valid)
	assert.Nil(t, cfg)
	require.Len(t, result.Errors, 1)
}

func TestOutputValidationResult(t *testing.T) {
	result := ValidationResult{Valid: true, Config: "config.yaml", IRC: true, Bots: []string{"discord"}, Warnings: []string{"w"}}

	var text bytes.Buffer
	outputValidationResult(&text, result, false)
	assert.Contains(t, text.String(), "✓ Configuration is valid")
	assert.Contains(t, text.String(), "- w")

	var js bytes.Buffer
	outputValidationResult(&js, result, true)
	var decoded ValidationResult
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, result, decoded)

	var failed bytes.Buffer
	outputValidationResult(&failed, ValidationResult{Errors: []string{"boom"}}, false)
	assert.Contains(t, failed.String(), "validation failed")
	assert.Contains(t, failed.String(), "- boom")
}

func TestShowConfig(t *testing.T) {
	var out bytes.Buffer
	showConfig(&out, "config.yaml", testConfig())
	assert.Contains(t, out.String(), "IRC: irc.gamesurge.net:6667 as testbot")
	assert.Contains(t, out.String(), "- discord: enabled")
}
