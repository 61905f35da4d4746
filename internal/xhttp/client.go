package xhttp

import (
	"net/http"
	"time"
)

// defaultTimeout bounds every request so a stalled vault or registry
// endpoint fails the sync step instead of hanging it.
const defaultTimeout = 30 * time.Second

type ClientOption func(*http.Client)

// WithTimeout overrides the default request timeout. A non-positive
// duration is ignored and the default stands.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *http.Client) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

func NewHTTPClient(opts ...ClientOption) *http.Client {
	c := &http.Client{
		Transport: NewTransport(),
		Timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
