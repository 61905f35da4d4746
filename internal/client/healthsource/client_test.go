package healthsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/kanohealth/vitalvault/internal/metric"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	return New(tokenSource, WithBaseURL(srv.URL))
}

func TestSamplesPaginates(t *testing.T) {
	t.Parallel()

	page := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header = %q", got)
		}

		page++
		switch page {
		case 1:
			if r.URL.Query().Get("next_token") != "" {
				t.Error("first page must not carry a next_token")
			}
			fmt.Fprint(w, `{
				"records": [
					{"metric_id": "steps", "value": 4000,
					 "start": "2026-03-14T09:00:00Z", "end": "2026-03-14T09:01:00Z",
					 "source_tag": "watch"}
				],
				"next_token": "page-2"
			}`)
		case 2:
			if got := r.URL.Query().Get("next_token"); got != "page-2" {
				t.Errorf("next_token = %q, want page-2", got)
			}
			fmt.Fprint(w, `{
				"records": [
					{"metric_id": "sleep_analysis", "value": "deep",
					 "start": "2026-03-14T02:00:00Z", "end": "2026-03-14T03:30:00Z"}
				],
				"next_token": null
			}`)
		default:
			t.Errorf("unexpected page %d", page)
		}
	})

	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	samples, err := client.Samples(context.Background(), start, start.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}

	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].MetricID != metric.Steps || samples[0].Value != 4000 {
		t.Errorf("sample 0 = %+v", samples[0])
	}
	// string values carry the sleep stage tag
	if samples[1].Stage != "deep" {
		t.Errorf("sample 1 stage = %q, want deep", samples[1].Stage)
	}
	if got := samples[1].Minutes(); got != 90 {
		t.Errorf("sample 1 duration = %v minutes, want 90", got)
	}
}

func TestSamplesAPIError(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "authorization revoked"}`)
	})

	_, err := client.Samples(context.Background(), time.Now().Add(-time.Hour), time.Now())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "authorization revoked" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if !apiErr.Unauthorized() {
		t.Error("Unauthorized() = false for 401")
	}
}
