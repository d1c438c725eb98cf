package handlers

import (
	"context"

	"github.com/keepmind9/pokerbot/internal/command"
)

// Help lists the description of every registered handler
type Help struct {
	registry *command.Registry
}

func (h *Help) Name() string             { return "help" }
func (h *Help) Trigger() command.Trigger { return command.Prefixes("!help", ".help") }
func (h *Help) Description() string {
	return "!help or .help: send to channel the list of commands"
}

func (h *Help) Execute(ctx context.Context, inv *command.Invocation) error {
	if h.registry == nil {
		return nil
	}
	for _, line := range h.registry.Descriptions() {
		if err := inv.Reply(ctx, line); err != nil {
			return err
		}
	}
	return nil
}
