package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/core"
	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/nicklaw5/helix/v2"
	"github.com/sirupsen/logrus"
)

// Game is a category the streams command can list
type Game int

const (
	Dota Game = iota
	LeagueOfLegends
	Quake
	MagicTheGathering
)

func (g Game) String() string {
	switch g {
	case Dota:
		return "Dota"
	case LeagueOfLegends:
		return "LeagueOfLegends"
	case Quake:
		return "Quake"
	case MagicTheGathering:
		return "MagicTheGathering"
	}
	return fmt.Sprintf("Game(%d)", int(g))
}

// TwitchName is the category name on Twitch
func (g Game) TwitchName() string {
	switch g {
	case LeagueOfLegends:
		return "League of Legends"
	case Quake:
		return "Quake Live"
	case MagicTheGathering:
		return "Magic: The Gathering"
	}
	return "Dota 2"
}

// Limit is how many streams are listed for the game
func (g Game) Limit() int {
	if g == Quake {
		return 1
	}
	return constants.MaxStreamsListed
}

// gameSelection is either a game or a reply that ends the command
type gameSelection struct {
	game  Game
	reply string
}

// gameChoices are tested in order against the lower-cased argument
var gameChoices = []command.Choice[gameSelection]{
	{Match: command.HasPrefix("l"), Value: gameSelection{game: LeagueOfLegends}},
	{Match: command.HasPrefix("d"), Value: gameSelection{game: Dota}},
	{Match: command.HasPrefix("q"), Value: gameSelection{game: Quake}},
	{Match: command.HasPrefix("mtg", "magic", "m:tg"), Value: gameSelection{game: MagicTheGathering}},
	{Match: command.Equals("poker"), Value: gameSelection{reply: "Poker? I don't support dead games"}},
}

// SelectGame maps the argument of the streams command to a game. A non-empty
// reply means no game was selected and the reply should be sent instead.
func SelectGame(arg string) (game Game, reply string) {
	sel, ok := command.Choose(arg, gameSelection{game: Dota}, gameChoices)
	if !ok {
		return Dota, "Unknown game: " + strings.ToLower(strings.TrimSpace(arg))
	}
	return sel.game, sel.reply
}

// Stream is one live channel
type Stream struct {
	DisplayName string
	Login       string
	Viewers     int
}

// StreamLister returns the most watched live streams of a Twitch category
type StreamLister interface {
	TopStreams(ctx context.Context, category string, limit int) ([]Stream, error)
}

// Streams lists top Twitch streams for a game
type Streams struct {
	clientID     string
	clientSecret string
	lister       StreamLister
}

// NewStreams creates the streams handler
func NewStreams(cfg *core.Config, lister StreamLister) *Streams {
	return &Streams{
		clientID:     cfg.Credentials.TwitchClientID,
		clientSecret: cfg.Credentials.TwitchClientSecret,
		lister:       lister,
	}
}

func (s *Streams) Name() string { return "streams" }
func (s *Streams) Trigger() command.Trigger {
	return command.Prefixes("!twitch", ".twitch", "!streams", ".streams")
}
func (s *Streams) Description() string {
	return "!streams <game> or .streams <game>: send to channel top twitch streams for { dota, lol, quake, magic }."
}

func (s *Streams) Execute(ctx context.Context, inv *command.Invocation) error {
	game, reply := SelectGame(inv.Argument)
	if reply != "" {
		return inv.Reply(ctx, reply)
	}

	switch {
	case s.clientID == "":
		return inv.Reply(ctx, "Can't list streams: set the "+core.EnvTwitchClientID+" environment variable")
	case s.clientSecret == "":
		return inv.Reply(ctx, "Can't list streams: set the "+core.EnvTwitchClientSecret+" environment variable")
	}

	streams, err := s.lister.TopStreams(ctx, game.TwitchName(), game.Limit())
	if err != nil {
		return command.Fail("twitch streams lookup", err)
	}
	if len(streams) == 0 {
		return inv.Replyf(ctx, "No live %s streams", game.TwitchName())
	}

	for _, stream := range streams {
		if err := inv.Replyf(ctx, "%s | %d viewers | https://www.twitch.tv/%s/popout",
			stream.DisplayName, stream.Viewers, stream.Login); err != nil {
			return err
		}
	}
	return nil
}

var errTokenRejected = errors.New("app access token rejected")

// HelixStreams lists streams through the Twitch Helix API with an app access token
type HelixStreams struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu      sync.Mutex
	client  *helix.Client
	gameIDs map[string]string
}

// NewHelixStreams creates a lister. No request is made until the first lookup.
func NewHelixStreams(clientID, clientSecret string, httpClient *http.Client) *HelixStreams {
	return &HelixStreams{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		gameIDs:      make(map[string]string),
	}
}

// TopStreams resolves category to a game id and lists its top live streams.
// A rejected app access token is renewed once.
func (h *HelixStreams) TopStreams(ctx context.Context, category string, limit int) ([]Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	streams, err := h.topStreams(category, limit)
	if errors.Is(err, errTokenRejected) {
		logger.WithField("client_id", h.clientID).Info("twitch-app-access-token-rejected")
		h.resetClient()
		streams, err = h.topStreams(category, limit)
	}
	return streams, err
}

func (h *HelixStreams) topStreams(category string, limit int) ([]Stream, error) {
	client, err := h.helixClient()
	if err != nil {
		return nil, err
	}
	gameID, err := h.gameID(client, category)
	if err != nil {
		return nil, err
	}

	resp, err := client.GetStreams(&helix.StreamsParams{
		First:   limit,
		GameIDs: []string{gameID},
	})
	if err != nil {
		return nil, fmt.Errorf("helix: GetStreams: %w", err)
	}
	if err := helixStatus("GetStreams", resp.ResponseCommon); err != nil {
		return nil, err
	}

	streams := make([]Stream, 0, len(resp.Data.Streams))
	for _, st := range resp.Data.Streams {
		streams = append(streams, Stream{
			DisplayName: st.UserName,
			Login:       st.UserLogin,
			Viewers:     st.ViewerCount,
		})
	}
	return streams, nil
}

// helixClient creates the client and fetches an app access token on first use
func (h *HelixStreams) helixClient() (*helix.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client != nil {
		return h.client, nil
	}

	client, err := helix.NewClient(&helix.Options{
		ClientID:     h.clientID,
		ClientSecret: h.clientSecret,
		HTTPClient:   h.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("helix: NewClient: %w", err)
	}

	token, err := client.RequestAppAccessToken([]string{})
	if err != nil {
		return nil, fmt.Errorf("helix: RequestAppAccessToken: %w", err)
	}
	if token.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("helix: RequestAppAccessToken failed (%d: %s) %s",
			token.StatusCode, token.Error, token.ErrorMessage)
	}
	client.SetAppAccessToken(token.Data.AccessToken)

	logger.WithField("client_id", h.clientID).Info("twitch-app-access-token-acquired")
	h.client = client
	return client, nil
}

// resetClient drops the client so the next lookup requests a fresh token
func (h *HelixStreams) resetClient() {
	h.mu.Lock()
	h.client = nil
	h.mu.Unlock()
}

// helixStatus turns a non-200 Helix response into an error. 401 wraps errTokenRejected.
func helixStatus(call string, resp helix.ResponseCommon) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("helix: %s failed (%d: %s) %s: %w",
			call, resp.StatusCode, resp.Error, resp.ErrorMessage, errTokenRejected)
	default:
		return fmt.Errorf("helix: %s failed (%d: %s) %s",
			call, resp.StatusCode, resp.Error, resp.ErrorMessage)
	}
}

// gameID resolves and caches the id of a Twitch category
func (h *HelixStreams) gameID(client *helix.Client, name string) (string, error) {
	h.mu.Lock()
	id, ok := h.gameIDs[name]
	h.mu.Unlock()
	if ok {
		return id, nil
	}

	resp, err := client.GetGames(&helix.GamesParams{Names: []string{name}})
	if err != nil {
		return "", fmt.Errorf("helix: GetGames: %w", err)
	}
	if err := helixStatus("GetGames", resp.ResponseCommon); err != nil {
		return "", err
	}
	if len(resp.Data.Games) == 0 {
		return "", fmt.Errorf("game not found: %s", name)
	}

	id = resp.Data.Games[0].ID
	h.mu.Lock()
	h.gameIDs[name] = id
	h.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"game":    name,
		"game_id": id,
	}).Debug("twitch-game-resolved")
	return id, nil
}
