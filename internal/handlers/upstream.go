package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/tidwall/gjson"
)

// NewHTTPClient returns the client every handler uses for upstream APIs
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: constants.DefaultUpstreamTimeout}
}

// getJSON performs a GET and returns the parsed body. Non-2xx statuses and
// bodies that are not valid JSON are errors.
func getJSON(ctx context.Context, client *http.Client, url string, header http.Header) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxUpstreamBodySize))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("malformed response body")
	}
	return gjson.ParseBytes(body), nil
}
