package healthsource

import (
	"strconv"
	"time"

	go_json "github.com/goccy/go-json"

	"github.com/kanohealth/vitalvault/internal/metric"
)

// sampleRecord is the wire shape of one sample. Value is either a number
// or a string: sleep analysis samples report their stage tag there.
type sampleRecord struct {
	MetricID  string             `json:"metric_id"`
	Value     go_json.RawMessage `json:"value"`
	Stage     string             `json:"stage,omitempty"`
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	SourceTag string             `json:"source_tag,omitempty"`
}

func (r sampleRecord) toSample() metric.RawSample {
	s := metric.RawSample{
		MetricID:  r.MetricID,
		Stage:     r.Stage,
		Start:     r.Start,
		End:       r.End,
		SourceTag: r.SourceTag,
	}

	raw := string(r.Value)
	if len(raw) >= 2 && raw[0] == '"' {
		var tag string
		if err := go_json.Unmarshal(r.Value, &tag); err == nil && s.Stage == "" {
			s.Stage = tag
		}
		return s
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		s.Value = v
	}
	return s
}

type PaginatedResponse[T any] struct {
	Records   []T     `json:"records"`
	NextToken *string `json:"next_token"`
}

func (r *PaginatedResponse[T]) HasMore() bool {
	return r.NextToken != nil && *r.NextToken != ""
}
