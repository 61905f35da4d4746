package xhttp

import (
	"fmt"
	"net/http"

	"github.com/kanohealth/vitalvault/internal/version"
)

type vitalvaultTransport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*vitalvaultTransport)(nil)

func (t *vitalvaultTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "vitalvault/"+version.Get())
	req.Header.Set(version.Header, version.Get())
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

// NewTransport returns an http.RoundTripper with standard vitalvault headers.
func NewTransport() http.RoundTripper {
	return &vitalvaultTransport{base: http.DefaultTransport}
}
