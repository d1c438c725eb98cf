package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/core"
)

// CustomSearchURL is the Google Custom Search JSON API endpoint
const CustomSearchURL = "https://www.googleapis.com/customsearch/v1"

// Search replies with the first web search result for a query
type Search struct {
	apiKey string
	cxKey  string
	client *http.Client
	// BaseURL is the search endpoint, replaced in tests
	BaseURL string
}

// NewSearch creates the search handler
func NewSearch(cfg *core.Config, client *http.Client) *Search {
	return &Search{
		apiKey:  cfg.Credentials.SearchAPIKey,
		cxKey:   cfg.Credentials.SearchCXKey,
		client:  client,
		BaseURL: CustomSearchURL,
	}
}

func (s *Search) Name() string { return "search" }
func (s *Search) Trigger() command.Trigger {
	return command.Prefixes("!google", ".google", "!search", ".search")
}
func (s *Search) Description() string {
	return "!google <query> or .google <query>: send to channel the first web result for <query>"
}

func (s *Search) Execute(ctx context.Context, inv *command.Invocation) error {
	switch {
	case s.apiKey == "":
		return inv.Reply(ctx, "Can't search: set the "+core.EnvSearchAPIKey+" environment variable")
	case s.cxKey == "":
		return inv.Reply(ctx, "Can't search: set the "+core.EnvSearchCXKey+" environment variable")
	case inv.Argument == "":
		return inv.Reply(ctx, "Usage: !google <query>")
	}

	query := url.Values{}
	query.Set("key", s.apiKey)
	query.Set("cx", s.cxKey)
	query.Set("q", inv.Argument)
	query.Set("num", "1")

	res, err := getJSON(ctx, s.client, s.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return command.Fail("web search", err)
	}

	item := res.Get("items.0")
	if !item.Exists() {
		return inv.Replyf(ctx, "No results for '%s'", inv.Argument)
	}
	return inv.Replyf(ctx, "%s | %s", item.Get("title").String(), item.Get("link").String())
}
