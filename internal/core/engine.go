package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/keepmind9/pokerbot/internal/bot"
	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Engine connects bot adapters to the command router. It is also the Sink
// through which handlers reply.
type Engine struct {
	config          *Config
	router          *command.Router
	activeBots      map[string]bot.BotAdapter // Bot type -> adapter
	botMu           sync.RWMutex
	messageChan     chan bot.BotMessage
	shutdownTimeout time.Duration
	ctx             context.Context
	cancel          context.CancelFunc

	// dispatchMu orders dispatches before Stop's drain of the router
	dispatchMu sync.RWMutex
	stopped    bool
}

// NewEngine creates a new Engine instance
func NewEngine(config *Config, router *command.Router) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		config:          config,
		router:          router,
		activeBots:      make(map[string]bot.BotAdapter),
		messageChan:     make(chan bot.BotMessage, constants.MessageChannelBufferSize),
		shutdownTimeout: constants.DefaultShutdownTimeout,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// RegisterBotAdapter registers a bot adapter under its platform name
func (e *Engine) RegisterBotAdapter(botType string, adapter bot.BotAdapter) {
	e.botMu.Lock()
	defer e.botMu.Unlock()
	e.activeBots[botType] = adapter
}

// BotTypes returns the registered platform names in sorted order
func (e *Engine) BotTypes() []string {
	e.botMu.RLock()
	defer e.botMu.RUnlock()
	names := make([]string, 0, len(e.activeBots))
	for name := range e.activeBots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) adapter(botType string) (bot.BotAdapter, bool) {
	e.botMu.RLock()
	defer e.botMu.RUnlock()
	a, ok := e.activeBots[botType]
	return a, ok
}

// Run starts every registered adapter and processes messages until ctx is
// cancelled or Stop is called. It fails only when no adapter could start.
func (e *Engine) Run(ctx context.Context) error {
	logger.Info("starting-pokerbot-engine")

	started, err := e.startBots(ctx)
	if err != nil {
		return err
	}
	if started == 0 {
		return fmt.Errorf("no bot adapter could be started")
	}

	e.runEventLoop(ctx)
	return nil
}

// startBots starts all adapters concurrently. A failing adapter is logged
// and skipped so the others keep running.
func (e *Engine) startBots(ctx context.Context) (int, error) {
	var (
		mu      sync.Mutex
		started int
	)
	g, _ := errgroup.WithContext(ctx)
	for _, botType := range e.BotTypes() {
		botAdapter, _ := e.adapter(botType)
		bt := botType
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(logrus.Fields{
						"bot_type": bt,
						"panic":    r,
					}).Error("bot-start-panic-recovered")
				}
			}()
			logger.WithField("bot_type", bt).Info("starting-bot")
			if err := botAdapter.Start(e.HandleBotMessage); err != nil {
				logger.WithFields(logrus.Fields{
					"bot_type": bt,
					"error":    err,
				}).Error("failed-to-start-bot")
				return nil
			}
			mu.Lock()
			started++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return started, nil
}

// runEventLoop routes queued messages until shutdown
func (e *Engine) runEventLoop(ctx context.Context) {
	logger.Info("engine-event-loop-started")

	// Invocations outlive a cancelled engine context so Stop can drain them.
	dispatchCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("event-loop-shutting-down")
			return
		case <-e.ctx.Done():
			logger.Info("event-loop-shutting-down")
			return
		case msg := <-e.messageChan:
			e.HandleUserMessage(dispatchCtx, msg)
		}
	}
}

// HandleBotMessage is the callback adapters use to deliver messages. It only
// enqueues, so adapters are never blocked by handler work.
func (e *Engine) HandleBotMessage(msg bot.BotMessage) {
	select {
	case e.messageChan <- msg:
	case <-e.ctx.Done():
	}
}

// HandleUserMessage converts a bot message into an event and dispatches it.
// Messages arriving after Stop are dropped.
func (e *Engine) HandleUserMessage(ctx context.Context, msg bot.BotMessage) bool {
	e.dispatchMu.RLock()
	defer e.dispatchMu.RUnlock()
	if e.stopped {
		logger.WithField("platform", msg.Platform).Debug("message-dropped-after-stop")
		return false
	}

	ev := ToEvent(msg)
	logger.WithFields(logrus.Fields{
		"platform": msg.Platform,
		"user":     msg.UserID,
		"channel":  msg.Channel,
	}).Debug("processing-user-message")
	return e.router.Dispatch(ctx, ev, e)
}

// ToEvent maps a transport message onto the dispatch core's event
func ToEvent(msg bot.BotMessage) command.Event {
	received := msg.Timestamp
	if received.IsZero() {
		received = time.Now()
	}
	return command.Event{
		Destination: command.Destination{Platform: msg.Platform, Channel: msg.Channel},
		Sender:      msg.UserID,
		Text:        msg.Content,
		ReceivedAt:  received,
	}
}

// Send implements command.Sink by forwarding one line to the adapter of the
// destination platform
func (e *Engine) Send(ctx context.Context, dest command.Destination, text string) error {
	botAdapter, ok := e.adapter(dest.Platform)
	if !ok {
		return fmt.Errorf("no bot adapter registered for platform %s", dest.Platform)
	}
	if err := botAdapter.SendMessage(dest.Channel, text); err != nil {
		return fmt.Errorf("send to %s/%s: %w", dest.Platform, dest.Channel, err)
	}
	return nil
}

// Stop stops every adapter and waits for running handlers to finish
func (e *Engine) Stop() error {
	logger.Info("stopping-pokerbot-engine")
	e.cancel()

	e.dispatchMu.Lock()
	e.stopped = true
	e.dispatchMu.Unlock()

	var firstErr error
	for _, botType := range e.BotTypes() {
		botAdapter, _ := e.adapter(botType)
		if err := botAdapter.Stop(); err != nil {
			logger.WithFields(logrus.Fields{
				"bot_type": botType,
				"error":    err,
			}).Warn("failed-to-stop-bot")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	done := make(chan struct{})
	go func() {
		e.router.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("all-handlers-finished")
	case <-time.After(e.shutdownTimeout):
		logger.WithField("timeout", e.shutdownTimeout.String()).Warn("handlers-still-running-at-shutdown")
	}

	return firstErr
}
