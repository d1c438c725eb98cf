package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/core"
)

// RottenTomatoesURL is the movie search endpoint of the Rotten Tomatoes API
const RottenTomatoesURL = "https://api.rottentomatoes.com/api/public/v1.0/movies.json"

// Ratings replies with the Rotten Tomatoes scores of a movie
type Ratings struct {
	apiKey string
	client *http.Client
	// BaseURL is the search endpoint, replaced in tests
	BaseURL string
}

// NewRatings creates the ratings handler
func NewRatings(cfg *core.Config, client *http.Client) *Ratings {
	return &Ratings{
		apiKey:  cfg.Credentials.RottenTomatoesAPIKey,
		client:  client,
		BaseURL: RottenTomatoesURL,
	}
}

func (r *Ratings) Name() string             { return "ratings" }
func (r *Ratings) Trigger() command.Trigger { return command.Prefixes(".rt", "!rt") }
func (r *Ratings) Description() string {
	return "!rt <title> or .rt <title>: send to channel rotten tomatoes critic rating, audience rating, and URL for <title>"
}

func (r *Ratings) Execute(ctx context.Context, inv *command.Invocation) error {
	if r.apiKey == "" {
		return inv.Reply(ctx, "Can't RottenTomato: set the "+core.EnvRottenTomatoesAPIKey+" environment variable")
	}
	movieName := inv.Argument
	if movieName == "" {
		return inv.Reply(ctx, "Usage: !rt <title>")
	}

	query := url.Values{}
	query.Set("apikey", r.apiKey)
	query.Set("q", movieName)
	query.Set("page_limit", "1")

	res, err := getJSON(ctx, r.client, r.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return command.Fail("rotten tomatoes lookup", err)
	}

	movie := res.Get("movies.0")
	if res.Get("total").Int() == 0 || !movie.Exists() {
		return inv.Replyf(ctx, "RottenTomatoes - '%s' not found. Incorrect movie name?", movieName)
	}

	return inv.Replyf(ctx, "RottenTomatoes - %s |  critics: %d%% | audience: %d%% | %s",
		movie.Get("title").String(),
		movie.Get("ratings.critics_score").Int(),
		movie.Get("ratings.audience_score").Int(),
		movie.Get("links.alternate").String(),
	)
}
