// Package feed is the client for the upstream play-by-play provider. The
// pipeline treats the provider as a source of ordered Play-like records,
// always retrievable as the *entire* history for a game so restart
// reconstruction never depends on "since sequence N" support.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/jasper9/nbastats.fun/pkg/cache"
	"github.com/jasper9/nbastats.fun/pkg/metrics"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultCacheTTL = 5 * time.Second
	playsPerPage    = 1000
	statsPerPage    = 100
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client; tests point it at a
// httptest server transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCacheTTL bounds repeat requests for the same resource.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// Client fetches games, plays, and box-score stats.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cacheTTL   time.Duration

	games *cache.Cache[string, []Game]
	plays *cache.Cache[int, []Play]
	stats *cache.Cache[int, []Stat]
}

// New creates a feed client for the given base URL and API key.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		cacheTTL:   defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.games = cache.New(cache.WithTTL[string, []Game](c.cacheTTL))
	c.plays = cache.New(cache.WithTTL[int, []Play](c.cacheTTL))
	c.stats = cache.New(cache.WithTTL[int, []Stat](c.cacheTTL))
	return c
}

// Games returns all games scheduled for a YYYY-MM-DD date.
func (c *Client) Games(ctx context.Context, date string) ([]Game, error) {
	return c.games.GetOrFetch(ctx, date, func(ctx context.Context) ([]Game, error) {
		var out struct {
			Data []Game `json:"data"`
		}
		params := map[string]string{"dates[]": date, "per_page": "50"}
		if err := c.get(ctx, "games", params, &out); err != nil {
			return nil, err
		}
		return out.Data, nil
	})
}

// Plays returns the full play-by-play history for a game, sorted by
// sequence order.
func (c *Client) Plays(ctx context.Context, gameID int) ([]Play, error) {
	plays, err := c.plays.GetOrFetch(ctx, gameID, func(ctx context.Context) ([]Play, error) {
		var out struct {
			Data []Play `json:"data"`
		}
		params := map[string]string{
			"game_id":  strconv.Itoa(gameID),
			"per_page": strconv.Itoa(playsPerPage),
		}
		if err := c.get(ctx, "plays", params, &out); err != nil {
			return nil, err
		}
		sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].Order < out.Data[j].Order })
		return out.Data, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordPlaysFetched(len(plays))
	return plays, nil
}

// Stats returns the box-score stat lines for a game.
func (c *Client) Stats(ctx context.Context, gameID int) ([]Stat, error) {
	return c.stats.GetOrFetch(ctx, gameID, func(ctx context.Context) ([]Stat, error) {
		var out struct {
			Data []Stat `json:"data"`
		}
		params := map[string]string{
			"game_ids[]": strconv.Itoa(gameID),
			"per_page":   strconv.Itoa(statsPerPage),
		}
		if err := c.get(ctx, "stats", params, &out); err != nil {
			return nil, err
		}
		return out.Data, nil
	})
}

// get performs an authenticated GET and decodes the JSON envelope.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	q := req.URL.Query()
	for key, value := range params {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d from %s", ErrUpstream, resp.StatusCode, endpoint)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}
