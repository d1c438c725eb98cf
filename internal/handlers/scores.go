package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/core"
	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// ESPNScoreboardURL is the base of the ESPN scoreboard API
const ESPNScoreboardURL = "https://site.api.espn.com/apis/site/v2/sports"

// League is a sports league the scores command knows
type League struct {
	Name string // shown to users
	Path string // sport/league segment of the scoreboard URL
}

var (
	NFL             = League{Name: "NFL", Path: "football/nfl"}
	NBA             = League{Name: "NBA", Path: "basketball/nba"}
	NHL             = League{Name: "NHL", Path: "hockey/nhl"}
	MLB             = League{Name: "MLB", Path: "baseball/mlb"}
	CollegeFootball = League{Name: "NCAAF", Path: "football/college-football"}
)

// Leagues lists every league the scores command can show
var Leagues = []League{NFL, NBA, NHL, MLB, CollegeFootball}

// leagueChoices are tested in order against the lower-cased argument
var leagueChoices = []command.Choice[League]{
	{Match: command.HasPrefix("nba"), Value: NBA},
	{Match: command.HasPrefix("nhl"), Value: NHL},
	{Match: command.HasPrefix("mlb", "b"), Value: MLB},
	{Match: command.HasPrefix("n", "f"), Value: NFL},
	{Match: command.HasPrefix("c"), Value: CollegeFootball},
}

// SelectLeague maps the argument of the scores command to a league
func SelectLeague(arg string) (League, bool) {
	return command.Choose(arg, NFL, leagueChoices)
}

type scoreboard struct {
	lines     []string
	fetchedAt time.Time
}

// Scores replies with today's games of a league. Scoreboards are cached and
// refreshed in the background by Refresh.
type Scores struct {
	enabled bool
	apiKey  string
	client  *http.Client
	// BaseURL is the scoreboard API root, replaced in tests
	BaseURL string
	// MaxAge is how long a cached scoreboard is served
	MaxAge time.Duration

	mu    sync.RWMutex
	cache map[string]scoreboard
}

// NewScores creates the scores handler
func NewScores(cfg *core.Config, client *http.Client) *Scores {
	return &Scores{
		enabled: cfg.Features.ESPN.Enabled,
		apiKey:  cfg.Credentials.ESPNAPIKey,
		client:  client,
		BaseURL: ESPNScoreboardURL,
		MaxAge:  time.Duration(cfg.Features.ESPN.PollIntervalMinutes) * time.Minute,
		cache:   make(map[string]scoreboard),
	}
}

func (s *Scores) Name() string             { return "scores" }
func (s *Scores) Trigger() command.Trigger { return command.Pattern(`(?s)^[.!]scores?\b(.*)$`) }
func (s *Scores) Description() string {
	return "!scores <league> or .scores <league>: send to channel today's scores for { nfl, nba, nhl, mlb, college }"
}

// Ready reports whether the handler is configured to reach ESPN
func (s *Scores) Ready() bool { return s.enabled && s.apiKey != "" }

func (s *Scores) Execute(ctx context.Context, inv *command.Invocation) error {
	switch {
	case !s.enabled:
		return inv.Reply(ctx, "Can't fetch scores: enable features.espn in the config")
	case s.apiKey == "":
		return inv.Reply(ctx, "Can't fetch scores: set the "+core.EnvESPNAPIKey+" environment variable")
	}

	league, ok := SelectLeague(inv.Argument)
	if !ok {
		return inv.Reply(ctx, "Unknown league: "+strings.ToLower(inv.Argument))
	}

	lines, ok := s.cached(league)
	if !ok {
		var err error
		if lines, err = s.fetch(ctx, league); err != nil {
			return command.Fail(league.Name+" scores lookup", err)
		}
	}

	if len(lines) == 0 {
		return inv.Replyf(ctx, "No %s games today", league.Name)
	}
	for _, line := range lines {
		if err := inv.Reply(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

// Refresh reloads the scoreboard of every league
func (s *Scores) Refresh(ctx context.Context) error {
	if !s.Ready() {
		return nil
	}
	var failed []string
	for _, league := range Leagues {
		if _, err := s.fetch(ctx, league); err != nil {
			logger.WithFields(logrus.Fields{
				"league": league.Name,
				"error":  err,
			}).Warn("scoreboard-refresh-failed")
			failed = append(failed, league.Name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to refresh scoreboards: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (s *Scores) cached(league League) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.cache[league.Name]
	if !ok || (s.MaxAge > 0 && time.Since(board.fetchedAt) > s.MaxAge) {
		return nil, false
	}
	return board.lines, true
}

// fetch loads a scoreboard and stores it in the cache
func (s *Scores) fetch(ctx context.Context, league League) ([]string, error) {
	query := url.Values{}
	query.Set("apikey", s.apiKey)

	res, err := getJSON(ctx, s.client, s.BaseURL+"/"+league.Path+"/scoreboard?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !res.Get("events").IsArray() {
		return nil, fmt.Errorf("scoreboard has no events list")
	}

	lines := formatScoreboard(res)
	s.mu.Lock()
	s.cache[league.Name] = scoreboard{lines: lines, fetchedAt: time.Now()}
	s.mu.Unlock()
	return lines, nil
}

// formatScoreboard renders one line per game: AWAY 21 @ HOME 17 (Final)
func formatScoreboard(res gjson.Result) []string {
	var lines []string
	res.Get("events").ForEach(func(_, event gjson.Result) bool {
		var home, away string
		event.Get("competitions.0.competitors").ForEach(func(_, team gjson.Result) bool {
			side := fmt.Sprintf("%s %s", team.Get("team.abbreviation").String(), team.Get("score").String())
			if team.Get("homeAway").String() == "home" {
				home = side
			} else {
				away = side
			}
			return true
		})
		line := fmt.Sprintf("%s @ %s", strings.TrimSpace(away), strings.TrimSpace(home))
		if status := event.Get("status.type.shortDetail").String(); status != "" {
			line += " (" + status + ")"
		}
		lines = append(lines, line)
		return len(lines) < constants.MaxScoreLines
	})
	return lines
}
