// Package attest is the client for the on-chain attestation registry: a
// verifiable record binding a content hash and completeness metadata to a
// point in time. Registry internals are out of scope; this is a narrow
// request/response surface.
package attest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	go_json "github.com/goccy/go-json"

	"github.com/kanohealth/vitalvault/internal/xhttp"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL string, opts ...Option) *Client {
	cfg := &clientConfig{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.apiKey,
		httpClient: xhttp.NewHTTPClient(xhttp.WithTimeout(cfg.timeout)),
		logger:     cfg.logger,
	}
}

type clientConfig struct {
	apiKey  string
	logger  *slog.Logger
	timeout time.Duration
}

type Option func(*clientConfig)

func WithAPIKey(apiKey string) Option {
	return func(cfg *clientConfig) { cfg.apiKey = apiKey }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := go_json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := go_json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("attestation registry: %d %s", e.StatusCode, e.Message)
}
