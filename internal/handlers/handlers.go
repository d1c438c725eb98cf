// Package handlers implements the commands pokerbot answers to.
//
// Each handler satisfies command.Handler. Handlers that need an API key check
// for it when they run, not when they are registered, and tell the channel
// which environment variable is missing.
package handlers

import (
	"net/http"

	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/core"
)

// Deps are the collaborators handlers share. Zero fields get production defaults.
type Deps struct {
	HTTPClient *http.Client
	Streams    StreamLister
	Completer  Completer
}

// Set is the default handler set in registration order
type Set struct {
	Help    *Help
	Ratings *Ratings
	Streams *Streams
	Search  *Search
	Scores  *Scores
	Crypto  *Crypto
	Ask     *Ask
}

// New builds the default handlers for cfg. The help handler lists whatever
// registry the set is registered into.
func New(cfg *core.Config, deps Deps) *Set {
	if deps.HTTPClient == nil {
		deps.HTTPClient = NewHTTPClient()
	}
	if deps.Streams == nil {
		deps.Streams = NewHelixStreams(cfg.Credentials.TwitchClientID, cfg.Credentials.TwitchClientSecret, deps.HTTPClient)
	}
	if deps.Completer == nil {
		deps.Completer = NewOpenAICompleter(cfg.Credentials.OpenAIAPIKey, cfg.Features.Ask.Model, deps.HTTPClient)
	}

	return &Set{
		Help:    &Help{},
		Ratings: NewRatings(cfg, deps.HTTPClient),
		Streams: NewStreams(cfg, deps.Streams),
		Search:  NewSearch(cfg, deps.HTTPClient),
		Scores:  NewScores(cfg, deps.HTTPClient),
		Crypto:  NewCrypto(cfg, deps.HTTPClient),
		Ask:     NewAsk(cfg, deps.Completer),
	}
}

// Handlers returns the handlers in registration order. Earlier handlers win
// when triggers overlap.
func (s *Set) Handlers() []command.Handler {
	return []command.Handler{s.Help, s.Ratings, s.Streams, s.Search, s.Scores, s.Crypto, s.Ask}
}

// Register adds the set to reg and points the help handler at it
func (s *Set) Register(reg *command.Registry) error {
	s.Help.registry = reg
	for _, h := range s.Handlers() {
		if err := reg.Register(h); err != nil {
			return err
		}
	}
	return nil
}
