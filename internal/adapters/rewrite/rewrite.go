// Package rewrite is the client for the optional stylistic-rewrite
// collaborator. It may reword a message without changing its semantic
// payload; every non-success outcome is treated identically to "not
// available" and the caller keeps the literal text. Safe for concurrent
// use; the client holds no mutable state.
package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jasper9/nbastats.fun/pkg/metrics"
)

const defaultTimeout = 2 * time.Second

// Option applies a configuration option to the HTTPRewriter.
type Option func(*HTTPRewriter)

// WithTimeout sets the hard per-call budget.
func WithTimeout(d time.Duration) Option {
	return func(r *HTTPRewriter) {
		if d > 0 {
			r.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *HTTPRewriter) {
		if hc != nil {
			r.httpClient = hc
		}
	}
}

// HTTPRewriter posts (persona, gist, context) and returns the rewritten
// text.
type HTTPRewriter struct {
	httpClient *http.Client
	url        string
}

// NewHTTP creates a rewriter against the given endpoint.
func NewHTTP(url string, opts ...Option) *HTTPRewriter {
	r := &HTTPRewriter{
		httpClient: &http.Client{Timeout: defaultTimeout},
		url:        url,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type rewriteRequest struct {
	Persona string            `json:"persona"`
	Gist    string            `json:"gist"`
	Context map[string]string `json:"context,omitempty"`
}

type rewriteResponse struct {
	Text string `json:"text"`
}

// Rewrite forwards the gist to the collaborator. Any transport error,
// non-2xx status, or empty response is ErrUnavailable.
func (r *HTTPRewriter) Rewrite(ctx context.Context, persona, gist string, meta map[string]string) (string, error) {
	start := time.Now()
	metrics.RecordRewriteCall()
	defer func() {
		metrics.RecordRewriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	body, err := json.Marshal(rewriteRequest{Persona: persona, Gist: gist, Context: meta})
	if err != nil {
		metrics.RecordRewriteFallback()
		return "", fmt.Errorf("encoding rewrite request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		metrics.RecordRewriteFallback()
		return "", fmt.Errorf("creating rewrite request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.RecordRewriteFallback()
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordRewriteFallback()
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out rewriteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.RecordRewriteFallback()
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if strings.TrimSpace(out.Text) == "" {
		metrics.RecordRewriteFallback()
		return "", ErrUnavailable
	}
	return out.Text, nil
}

// Noop is the disabled rewriter; every call reports unavailable so the
// composer keeps the literal gist. Tests also use it to pin output.
type Noop struct{}

// Rewrite always returns ErrUnavailable.
func (Noop) Rewrite(context.Context, string, string, map[string]string) (string, error) {
	return "", ErrUnavailable
}
