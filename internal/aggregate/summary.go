package aggregate

import (
	"github.com/kanohealth/vitalvault/internal/metric"

	go_json "github.com/goccy/go-json"
)

// MetricSummary reduces one metric over one calendar day. Exactly one arm
// is populated, selected by Kind: Total for additive metrics, Avg/Min/Max
// for sampled metrics. Count is always the number of raw samples folded in.
type MetricSummary struct {
	Kind  metric.Kind
	Total float64
	Avg   float64
	Min   float64
	Max   float64
	Count int
}

type additiveSummaryDoc struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type sampledSummaryDoc struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// MarshalJSON emits only the populated arm, so additive summaries never
// serialize avg/min/max fields and sampled summaries never serialize total.
func (m MetricSummary) MarshalJSON() ([]byte, error) {
	if m.Kind == metric.KindAdditive {
		return go_json.Marshal(additiveSummaryDoc{Total: m.Total, Count: m.Count})
	}
	return go_json.Marshal(sampledSummaryDoc{Avg: m.Avg, Min: m.Min, Max: m.Max, Count: m.Count})
}

func (m *MetricSummary) UnmarshalJSON(data []byte) error {
	var doc struct {
		Total *float64 `json:"total"`
		Avg   float64  `json:"avg"`
		Min   float64  `json:"min"`
		Max   float64  `json:"max"`
		Count int      `json:"count"`
	}
	if err := go_json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Total != nil {
		*m = MetricSummary{Kind: metric.KindAdditive, Total: *doc.Total, Count: doc.Count}
		return nil
	}
	*m = MetricSummary{Kind: metric.KindSampled, Avg: doc.Avg, Min: doc.Min, Max: doc.Max, Count: doc.Count}
	return nil
}

// SleepSummary buckets one calendar day's sleep samples by stage, in
// minutes. Efficiency is asleep time over in-bed time and is nil when no
// in-bed time was recorded: absence means "not computable", not zero.
type SleepSummary struct {
	TotalMinutesAsleep float64  `json:"total"`
	InBedMinutes       float64  `json:"inBed"`
	AwakeMinutes       float64  `json:"awake"`
	CoreMinutes        float64  `json:"core"`
	DeepMinutes        float64  `json:"deep"`
	RemMinutes         float64  `json:"rem"`
	Efficiency         *float64 `json:"efficiency,omitempty"`
}

// DailySummary holds everything aggregated for one calendar day. It lives
// for the span of one sync: folded into the export payload, then discarded.
type DailySummary struct {
	Date    metric.Day               `json:"-"`
	Metrics map[string]MetricSummary `json:"metrics"`
	Sleep   *SleepSummary            `json:"sleep,omitempty"`
}
