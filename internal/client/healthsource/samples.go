package healthsource

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kanohealth/vitalvault/internal/metric"
	"github.com/kanohealth/vitalvault/internal/xslog"
)

const defaultPageSize = 200

// Samples fetches all raw samples recorded in [start, end], following
// pagination until the source is drained.
func (c *Client) Samples(ctx context.Context, start, end time.Time) ([]metric.RawSample, error) {
	const route = "/v1/samples"

	var (
		samples   []metric.RawSample
		nextToken string
	)
	for {
		query := url.Values{
			"start": []string{start.Format(time.RFC3339)},
			"end":   []string{end.Format(time.RFC3339)},
			"limit": []string{strconv.Itoa(defaultPageSize)},
		}
		if nextToken != "" {
			query.Set("next_token", nextToken)
		}

		var resp PaginatedResponse[sampleRecord]
		if err := c.do(ctx, http.MethodGet, route, query, &resp); err != nil {
			return nil, err
		}

		for _, rec := range resp.Records {
			samples = append(samples, rec.toSample())
		}

		if !resp.HasMore() {
			break
		}
		nextToken = *resp.NextToken
	}

	c.logger.DebugContext(ctx, "fetched samples",
		xslog.Start(start),
		xslog.End(end),
		xslog.Count(len(samples)))

	return samples, nil
}
