package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/core"
	"github.com/keepmind9/pokerbot/pkg/constants"
	openai "github.com/sashabaranov/go-openai"
)

const askSystemPrompt = "You are a chat bot in a poker players' channel. Answer in at most five short lines of plain text."

// Completer answers a free-form question
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Ask forwards a question to a language model
type Ask struct {
	apiKey    string
	completer Completer
}

// NewAsk creates the ask handler
func NewAsk(cfg *core.Config, completer Completer) *Ask {
	return &Ask{apiKey: cfg.Credentials.OpenAIAPIKey, completer: completer}
}

func (a *Ask) Name() string             { return "ask" }
func (a *Ask) Trigger() command.Trigger { return command.Prefixes("!ask", ".ask") }
func (a *Ask) Description() string {
	return "!ask <question> or .ask <question>: send to channel a short answer to <question>"
}

func (a *Ask) Execute(ctx context.Context, inv *command.Invocation) error {
	switch {
	case a.apiKey == "":
		return inv.Reply(ctx, "Can't ask: set the "+core.EnvOpenAIAPIKey+" environment variable")
	case inv.Argument == "":
		return inv.Reply(ctx, "Usage: !ask <question>")
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultUpstreamTimeout)
	defer cancel()

	answer, err := a.completer.Complete(ctx, inv.Argument)
	if err != nil {
		return command.Fail("ask", err)
	}

	sent := 0
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := inv.Reply(ctx, line); err != nil {
			return err
		}
		if sent++; sent == constants.MaxAskLines {
			break
		}
	}
	return nil
}

// OpenAICompleter implements Completer with the OpenAI chat completions API
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates a completer. An empty key still yields a client;
// the ask handler refuses to run without one.
func NewOpenAICompleter(apiKey, model string, httpClient *http.Client) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends prompt as a single user message
func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: askSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
