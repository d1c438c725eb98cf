package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/keepmind9/pokerbot/internal/core"
	"github.com/spf13/cobra"
)

var (
	validateConfig string
	validateShow   bool
	validateJSON   bool
)

// ValidationResult represents the validation result
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Config   string   `json:"config"`
	IRC      bool     `json:"irc"`
	Bots     []string `json:"bots"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate pokerbot configuration file",
	Long: `Validate the pokerbot configuration file without connecting anywhere.

This command checks:
  - YAML syntax and ${VAR} references
  - IRC connection settings
  - Bot credentials
  - Command API keys (missing keys are warnings; those commands reply with a hint)

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		configFile := validateConfig
		if configFile == "" {
			configFile = findConfigFile()
		}
		if configFile == "" {
			fmt.Fprintln(out, "❌ No configuration file found")
			fmt.Fprintln(out, "\nSpecify a config file with --config or ensure one exists at:")
			for _, loc := range configLocations() {
				fmt.Fprintf(out, "  - %s\n", loc)
			}
			os.Exit(1)
		}

		result, cfg := validateFile(configFile)
		if validateShow && cfg != nil {
			showConfig(out, configFile, cfg)
		}
		outputValidationResult(out, result, validateJSON)

		if !result.Valid {
			os.Exit(1)
		}
	},
}

func configLocations() []string {
	return []string{
		"config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/pokerbot/config.yaml"),
		"/etc/pokerbot/config.yaml",
	}
}

func findConfigFile() string {
	for _, loc := range configLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// validateFile loads configFile and collects errors and warnings
func validateFile(configFile string) (ValidationResult, *core.Config) {
	cfg, err := core.LoadConfig(configFile)
	if err != nil {
		return ValidationResult{
			Valid:  false,
			Config: configFile,
			Errors: []string{err.Error()},
		}, nil
	}

	errs, warnings := validateConfigDetails(cfg)
	return ValidationResult{
		Valid:    len(errs) == 0,
		Config:   configFile,
		IRC:      cfg.IRC.Enabled,
		Bots:     cfg.EnabledBots(),
		Errors:   errs,
		Warnings: warnings,
	}, cfg
}

// validateConfigDetails reports missing transport credentials as errors and
// missing command API keys as warnings
func validateConfigDetails(cfg *core.Config) (errs, warnings []string) {
	for _, name := range cfg.EnabledBots() {
		bot := cfg.Bots[name]
		switch name {
		case "twitch":
			if bot.Username == "" || bot.Token == "" {
				errs = append(errs, "Bot 'twitch' needs username and token")
			}
			if len(bot.Channels) == 0 {
				errs = append(errs, "Bot 'twitch' has no channels to join")
			}
		case "slack":
			if bot.Token == "" || bot.AppToken == "" {
				errs = append(errs, "Bot 'slack' needs token and app_token")
			}
		case "feishu", "dingtalk":
			if bot.AppID == "" || bot.AppSecret == "" {
				errs = append(errs, fmt.Sprintf("Bot '%s' needs app_id and app_secret", name))
			}
		default:
			if bot.Token == "" {
				errs = append(errs, fmt.Sprintf("Bot '%s' is enabled but has no token configured", name))
			}
		}
	}

	creds := cfg.Credentials
	missing := []struct {
		value   string
		env     string
		command string
	}{
		{creds.RottenTomatoesAPIKey, core.EnvRottenTomatoesAPIKey, "!rt"},
		{creds.TwitchClientID, core.EnvTwitchClientID, "!streams"},
		{creds.TwitchClientSecret, core.EnvTwitchClientSecret, "!streams"},
		{creds.SearchAPIKey, core.EnvSearchAPIKey, "!google"},
		{creds.SearchCXKey, core.EnvSearchCXKey, "!google"},
		{creds.OpenAIAPIKey, core.EnvOpenAIAPIKey, "!ask"},
	}
	for _, m := range missing {
		if m.value == "" {
			warnings = append(warnings, fmt.Sprintf("%s is not set - %s will not work", m.env, m.command))
		}
	}
	if cfg.Features.ESPN.Enabled && creds.ESPNAPIKey == "" {
		warnings = append(warnings, core.EnvESPNAPIKey+" is not set - !scores will not work")
	}
	return errs, warnings
}

func showConfig(out io.Writer, configFile string, cfg *core.Config) {
	fmt.Fprintf(out, "✓ Configuration loaded: %s\n\n", configFile)
	if cfg.IRC.Enabled {
		fmt.Fprintf(out, "IRC: %s as %s (tls: %v)\n", cfg.IRCAddress(), cfg.IRC.Nick, cfg.IRC.TLS)
		fmt.Fprintf(out, "  channels: %v\n", cfg.IRC.Channels)
		fmt.Fprintf(out, "  perform commands: %d\n", len(cfg.IRC.Perform))
	} else {
		fmt.Fprintln(out, "IRC: disabled")
	}
	fmt.Fprintf(out, "\nBots (%d):\n", len(cfg.Bots))
	for name, bot := range cfg.Bots {
		status := "disabled"
		if bot.Enabled {
			status = "enabled"
		}
		fmt.Fprintf(out, "  - %s: %s\n", name, status)
	}
	fmt.Fprintf(out, "\nESPN scores: %v (every %d min)\n", cfg.Features.ESPN.Enabled, cfg.Features.ESPN.PollIntervalMinutes)
	fmt.Fprintf(out, "Crypto refresh: every %d min\n\n", cfg.Features.Crypto.RefreshMinutes)
}

func outputValidationResult(out io.Writer, result ValidationResult, jsonFormat bool) {
	if jsonFormat {
		output, err := json.Marshal(result)
		if err != nil {
			fmt.Fprintf(out, "{\"error\": \"failed to marshal json: %v\"}\n", err)
			return
		}
		fmt.Fprintln(out, string(output))
		return
	}

	if result.Valid {
		fmt.Fprintln(out, "✓ Configuration is valid")
		fmt.Fprintf(out, "  - Config: %s\n", result.Config)
		fmt.Fprintf(out, "  - IRC enabled: %v\n", result.IRC)
		fmt.Fprintf(out, "  - Bots enabled: %v\n", result.Bots)
	} else {
		fmt.Fprintln(out, "❌ Configuration validation failed:")
		fmt.Fprintln(out, "\nErrors:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", errMsg)
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, "\n⚠️  Warnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", warning)
		}
	}
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfig, "config", "c", "", "Configuration file path")
	validateCmd.Flags().BoolVar(&validateShow, "show", false, "Show full configuration details")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
}
