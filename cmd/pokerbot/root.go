package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pokerbot",
	Short: "pokerbot is a chat bot that answers commands on IRC and other chat networks",
	Long: `pokerbot joins chat channels (IRC, Twitch, Discord, Telegram, Slack,
Feishu, DingTalk), matches messages against its commands (!streams, !rt,
!scores, !crypto, ...) and replies in the channel the command came from.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(handlersCmd)
	rootCmd.AddCommand(versionCmd)
}
