package attest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/kanohealth/vitalvault/internal/score"
	"github.com/kanohealth/vitalvault/internal/xslog"
)

// Submission binds an uploaded payload's content hash and completeness
// metadata. Note there is no tier field: tier is a derived view, never
// transmitted.
type Submission struct {
	ContentHash       string `json:"content_hash"`
	DataType          string `json:"data_type"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	CompletenessScore int    `json:"completeness_score"`
	RecordCount       int    `json:"record_count"`
	CoreComplete      bool   `json:"core_complete"`
}

type Receipt struct {
	Timestamp time.Time `json:"timestamp"`
}

// Attestation is a retrieved registry record.
type Attestation struct {
	ContentHash       string    `json:"content_hash"`
	DataType          string    `json:"data_type"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	CompletenessScore int       `json:"completeness_score"`
	RecordCount       int       `json:"record_count"`
	CoreComplete      bool      `json:"core_complete"`
	Timestamp         time.Time `json:"timestamp"`
}

// Tier recomputes the tier from the attested score and core coverage.
// The registry's own opinion of tier, if it ever transmits one, is not
// trusted.
func (a Attestation) Tier() score.Tier {
	return score.TierFor(a.CompletenessScore, a.CoreComplete)
}

// Submit registers an attestation for an uploaded payload.
func (c *Client) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	const route = "/v1/attestations"

	var receipt Receipt
	if err := c.do(ctx, http.MethodPost, route, nil, sub, &receipt); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "attestation recorded",
		xslog.ContentHash(sub.ContentHash))

	return &receipt, nil
}

// List returns the attestations recorded for a wallet, newest first.
func (c *Client) List(ctx context.Context, walletAddress string) ([]Attestation, error) {
	const route = "/v1/attestations"

	query := url.Values{
		"wallet": []string{walletAddress},
	}

	var resp struct {
		Attestations []Attestation `json:"attestations"`
	}
	if err := c.do(ctx, http.MethodGet, route, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Attestations, nil
}
