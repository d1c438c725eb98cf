package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keepmind9/pokerbot/internal/bot"
	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/core"
	"github.com/keepmind9/pokerbot/internal/handlers"
	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/internal/scheduler"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string

	flagNick             string
	flagIdent            string
	flagServer           string
	flagChannels         []string
	flagPerform          []string
	flagESPNPollInterval int

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start pokerbot",
		Long:  "Connect to the configured chat networks and answer commands until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			config, err := core.LoadConfigWithOverrides(configFile, startOverrides())
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}

			if err := logger.InitLogger(loggerConfig(config)); err != nil {
				log.Fatalf("Failed to initialize logger: %v", err)
			}

			logger.WithFields(logrus.Fields{
				"config_file": configFile,
				"log_level":   config.Logging.Level,
				"log_file":    config.Logging.File,
			}).Info("logger-initialized")

			if err := run(config); err != nil {
				log.Fatalf("pokerbot error: %v", err)
			}
			log.Println("pokerbot stopped")
		},
	}
)

// startOverrides collects the command line values that win over the config file
func startOverrides() core.Overrides {
	return core.Overrides{
		Nick:                    flagNick,
		Ident:                   flagIdent,
		Server:                  flagServer,
		Channels:                flagChannels,
		Perform:                 flagPerform,
		ESPNPollIntervalMinutes: flagESPNPollInterval,
	}
}

func loggerConfig(config *core.Config) logger.Config {
	return logger.Config{
		Level:        config.Logging.Level,
		File:         config.Logging.File,
		MaxSize:      config.Logging.MaxSize,
		MaxBackups:   config.Logging.MaxBackups,
		MaxAge:       config.Logging.MaxAge,
		Compress:     config.Logging.Compress,
		EnableStdout: config.Logging.EnableStdout,
	}
}

// run wires handlers, transports and background jobs, and blocks until a
// signal arrives or the engine fails
func run(config *core.Config) error {
	set, router, err := buildRouter(config, handlers.Deps{})
	if err != nil {
		return err
	}

	engine := core.NewEngine(config, router)
	for name, adapter := range buildAdapters(config) {
		engine.RegisterBotAdapter(name, adapter)
		logger.WithField("bot", name).Info("bot-adapter-registered")
	}

	jobs := scheduler.New()
	if err := scheduleRefreshes(jobs, set, config); err != nil {
		return err
	}
	jobs.Start()
	defer jobs.Stop()

	logger.WithFields(logrus.Fields{
		"handlers": router.Registry().Len(),
		"jobs":     jobs.Len(),
	}).Info("pokerbot-ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	engineErrChan := make(chan error, 1)
	go func() {
		fmt.Println("pokerbot engine starting...")
		fmt.Println("Press Ctrl+C to stop")
		engineErrChan <- engine.Run(context.Background())
	}()

	select {
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("shutting-down")
		_ = shutdown(engine)
		return nil
	case err := <-engineErrChan:
		_ = shutdown(engine)
		return err
	}
}

type stopper interface {
	Stop() error
}

// shutdown stops s and logs a failure
func shutdown(s stopper) error {
	err := s.Stop()
	if err != nil {
		logger.WithField("error", err).Error("shutdown-error")
	}
	return err
}

// buildRouter registers the default handler set and freezes it behind a router
func buildRouter(config *core.Config, deps handlers.Deps) (*handlers.Set, *command.Router, error) {
	set := handlers.New(config, deps)
	registry := command.NewRegistry()
	if err := set.Register(registry); err != nil {
		return nil, nil, fmt.Errorf("failed to register handlers: %w", err)
	}
	return set, command.NewRouter(registry), nil
}

// buildAdapters creates one transport per enabled network, keyed by platform name
func buildAdapters(config *core.Config) map[string]bot.BotAdapter {
	adapters := make(map[string]bot.BotAdapter)

	if config.IRC.Enabled {
		adapters["irc"] = bot.NewIRCBot(bot.IRCOptions{
			Server:   config.IRCAddress(),
			TLS:      config.IRC.TLS,
			Nick:     config.IRC.Nick,
			Ident:    config.IRC.Ident,
			RealName: config.IRC.RealName,
			Channels: config.IRC.Channels,
			Perform:  config.IRC.Perform,
		})
	}

	for _, botType := range config.EnabledBots() {
		botConfig, err := config.GetBotConfig(botType)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"bot":   botType,
				"error": err,
			}).Warn("bot-config-unavailable")
			continue
		}
		switch botType {
		case "twitch":
			adapters[botType] = bot.NewTwitchBot(botConfig.Username, botConfig.Token, botConfig.Channels)
		case "discord":
			adapters[botType] = bot.NewDiscordBot(botConfig.Token, botConfig.ChannelID)
		case "telegram":
			adapters[botType] = bot.NewTelegramBot(botConfig.Token)
		case "slack":
			adapters[botType] = bot.NewSlackBot(botConfig.Token, botConfig.AppToken)
		case "feishu":
			feishuBot := bot.NewFeishuBot(botConfig.AppID, botConfig.AppSecret)
			feishuBot.EncryptKey = botConfig.EncryptKey
			feishuBot.VerificationToken = botConfig.VerificationToken
			adapters[botType] = feishuBot
		case "dingtalk":
			adapters[botType] = bot.NewDingTalkBot(botConfig.AppID, botConfig.AppSecret)
		default:
			logger.WithField("bot", botType).Warn("bot-type-not-implemented")
		}
	}
	return adapters
}

// scheduleRefreshes registers the background cache refreshes
func scheduleRefreshes(jobs *scheduler.Scheduler, set *handlers.Set, config *core.Config) error {
	if set.Scores.Ready() {
		interval := time.Duration(config.Features.ESPN.PollIntervalMinutes) * time.Minute
		if err := jobs.Every("espn-scoreboards", interval, set.Scores.Refresh); err != nil {
			return err
		}
	}
	interval := time.Duration(config.Features.Crypto.RefreshMinutes) * time.Minute
	return jobs.Every("crypto-markets", interval, set.Crypto.Refresh)
}

func init() {
	startCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
	startCmd.Flags().StringVar(&flagNick, "nick", "", "IRC nickname")
	startCmd.Flags().StringVar(&flagIdent, "ident", "", "IRC ident (defaults to the nickname)")
	startCmd.Flags().StringVar(&flagServer, "server", "", "IRC server host")
	startCmd.Flags().StringSliceVar(&flagChannels, "channels", nil, "IRC channels to join, comma separated")
	startCmd.Flags().StringArrayVar(&flagPerform, "perform", nil, "Raw IRC line to send after connecting (repeatable)")
	startCmd.Flags().IntVar(&flagESPNPollInterval, "espn-poll-interval", 0, "Minutes between ESPN scoreboard refreshes")
}
