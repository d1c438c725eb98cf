package handlers

import (
	"net/http"
	"testing"

	"github.com/keepmind9/pokerbot/internal/core"
	"github.com/stretchr/testify/assert"
)

const inceptionBody = `{"total":3,"movies":[{"title":"Inception","ratings":{"critics_score":87,"audience_score":91},"links":{"alternate":"http://www.rottentomatoes.com/m/inception/"}}]}`

func TestRatings_MissingKey(t *testing.T) {
	srv := newUpstream(t, jsonBody(inceptionBody))
	cfg := fullConfig()
	cfg.Credentials.RottenTomatoesAPIKey = ""
	h := NewRatings(cfg, NewHTTPClient())
	h.BaseURL = srv.URL

	lines := say(t, ".rt Inception", h)

	assert.Equal(t, []string{"Can't RottenTomato: set the RT_API_KEY environment variable"}, lines)
	assert.Zero(t, srv.hits.Load())
}

func TestRatings_PrefixStripping(t *testing.T) {
	for _, text := range []string{".rt Inception", "!rt Inception", "  .rt    Inception  "} {
		srv := newUpstream(t, jsonBody(inceptionBody))
		h := NewRatings(fullConfig(), NewHTTPClient())
		h.BaseURL = srv.URL

		lines := say(t, text, h)

		assert.Equal(t, []string{
			"RottenTomatoes - Inception |  critics: 87% | audience: 91% | http://www.rottentomatoes.com/m/inception/",
		}, lines, text)
		assert.Equal(t, "Inception", srv.lastQuery("q"))
		assert.Equal(t, "rt-key", srv.lastQuery("apikey"))
		assert.Equal(t, "1", srv.lastQuery("page_limit"))
	}
}

func TestRatings_NotFound(t *testing.T) {
	srv := newUpstream(t, jsonBody(`{"total":0,"movies":[]}`))
	h := NewRatings(fullConfig(), NewHTTPClient())
	h.BaseURL = srv.URL

	lines := say(t, "!rt Incepshun", h)

	assert.Equal(t, []string{"RottenTomatoes - 'Incepshun' not found. Incorrect movie name?"}, lines)
}

func TestRatings_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed body", jsonBody(`{"total":`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newUpstream(t, tt.handler)
			h := NewRatings(fullConfig(), NewHTTPClient())
			h.BaseURL = srv.URL

			lines := say(t, ".rt Inception", h)

			assert.Equal(t, []string{"Sorry, rotten tomatoes lookup failed"}, lines)
		})
	}
}

func TestRatings_EmptyTitle(t *testing.T) {
	srv := newUpstream(t, jsonBody(inceptionBody))
	h := NewRatings(&core.Config{Credentials: core.Credentials{RottenTomatoesAPIKey: "k"}}, NewHTTPClient())
	h.BaseURL = srv.URL

	assert.Equal(t, []string{"Usage: !rt <title>"}, say(t, ".rt", h))
	assert.Zero(t, srv.hits.Load())
}
