package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/keepmind9/pokerbot/internal/command"
	"github.com/keepmind9/pokerbot/internal/core"
)

// recordingSink keeps every line sent to it
type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSink) Send(ctx context.Context, dest command.Destination, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, text)
	return nil
}

func (s *recordingSink) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// fullConfig has every credential and feature set
func fullConfig() *core.Config {
	return &core.Config{
		Credentials: core.Credentials{
			RottenTomatoesAPIKey: "rt-key",
			TwitchClientID:       "twitch-id",
			TwitchClientSecret:   "twitch-secret",
			SearchAPIKey:         "search-key",
			SearchCXKey:          "cx-key",
			ESPNAPIKey:           "espn-key",
			OpenAIAPIKey:         "openai-key",
		},
		Features: core.FeaturesConfig{
			ESPN:   core.ESPNConfig{Enabled: true, PollIntervalMinutes: 10},
			Crypto: core.CryptoConfig{RefreshMinutes: 5, Top: 3, Currency: "usd"},
			Ask:    core.AskConfig{Model: "gpt-4o-mini"},
		},
	}
}

// upstream is an httptest server that counts requests
type upstream struct {
	*httptest.Server
	hits atomic.Int32
	last atomic.Value // *http.Request
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		u.last.Store(r)
		handler(w, r)
	}))
	t.Cleanup(u.Close)
	return u
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func (u *upstream) lastQuery(key string) string {
	r, _ := u.last.Load().(*http.Request)
	if r == nil {
		return ""
	}
	return r.URL.Query().Get(key)
}

// fakeLister is a StreamLister with canned streams
type fakeLister struct {
	mu      sync.Mutex
	streams []Stream
	err     error
	calls   []string
}

func (f *fakeLister) TopStreams(ctx context.Context, category string, limit int) ([]Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, category)
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.streams) {
		return f.streams[:limit], nil
	}
	return f.streams, nil
}

func (f *fakeLister) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeCompleter returns a canned answer
type fakeCompleter struct {
	answer string
	err    error
	calls  atomic.Int32
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	return f.answer, f.err
}

// say routes text through a router holding only handlers and waits for the replies
func say(t *testing.T, text string, handlers ...command.Handler) []string {
	t.Helper()
	reg := command.NewRegistry()
	for _, h := range handlers {
		if err := reg.Register(h); err != nil {
			t.Fatalf("register %s: %v", h.Name(), err)
		}
	}
	router := command.NewRouter(reg)
	sink := &recordingSink{}
	router.Dispatch(context.Background(), command.Event{
		Destination: command.Destination{Platform: "irc", Channel: "#pokerbot"},
		Sender:      "alice",
		Text:        text,
		ReceivedAt:  time.Now(),
	}, sink)
	router.Wait()
	return sink.Texts()
}
