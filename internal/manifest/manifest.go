// Package manifest assembles the versioned export document describing
// what a sync uploaded. Pure assembly: semantic validation happened in the
// scorer before this step.
package manifest

import (
	"sort"
	"strings"
	"time"

	"github.com/kanohealth/vitalvault/internal/aggregate"
	"github.com/kanohealth/vitalvault/internal/metric"
	"github.com/kanohealth/vitalvault/internal/score"

	go_json "github.com/goccy/go-json"
)

// Version of the manifest document shape. Bump when the shape changes so
// older consumers can detect documents they cannot read.
const Version = 1

const dateLayout = "2006-01-02"

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Sources counts raw samples by recording device class.
type Sources struct {
	Watch int `json:"watch"`
	Phone int `json:"phone"`
	Other int `json:"other"`
}

// Manifest is created once per sync and immutable after creation.
type Manifest struct {
	Version        int                      `json:"version"`
	ExportDate     string                   `json:"exportDate"`
	DateRange      DateRange                `json:"dateRange"`
	MetricsPresent []string                 `json:"metricsPresent"`
	Completeness   score.CompletenessResult `json:"completeness"`
	Sources        Sources                  `json:"sources"`
}

// Build assembles a manifest. MetricsPresent is sorted so the serialized
// document is identical across runs over unchanged data.
func Build(
	days map[metric.Day]*aggregate.DailySummary,
	completeness score.CompletenessResult,
	sources Sources,
	r metric.DateRange,
	exportDate time.Time,
) *Manifest {
	present := aggregate.MetricsPresent(days)
	sort.Strings(present)

	return &Manifest{
		Version:    Version,
		ExportDate: exportDate.Format(dateLayout),
		DateRange: DateRange{
			Start: r.Start.Format(dateLayout),
			End:   r.End.Format(dateLayout),
		},
		MetricsPresent: present,
		Completeness:   completeness,
		Sources:        sources,
	}
}

// BreakdownOf classifies samples by their source tag.
func BreakdownOf(samples []metric.RawSample) Sources {
	var s Sources
	for _, sample := range samples {
		tag := strings.ToLower(sample.SourceTag)
		switch {
		case strings.Contains(tag, "watch"):
			s.Watch++
		case strings.Contains(tag, "phone"):
			s.Phone++
		default:
			s.Other++
		}
	}
	return s
}

// Export is the full upload payload: the manifest plus the per-day
// summary documents, keyed by canonical date string.
type Export struct {
	Manifest *Manifest                          `json:"manifest"`
	Days     map[string]*aggregate.DailySummary `json:"days"`
}

// NewExport pairs a manifest with its daily summaries.
func NewExport(m *Manifest, days map[metric.Day]*aggregate.DailySummary) *Export {
	keyed := make(map[string]*aggregate.DailySummary, len(days))
	for day, ds := range days {
		keyed[day.String()] = ds
	}
	return &Export{Manifest: m, Days: keyed}
}

// Encode serializes the export payload.
func (e *Export) Encode() ([]byte, error) {
	return go_json.Marshal(e)
}

// Decode parses a serialized export payload.
func Decode(data []byte) (*Export, error) {
	var e Export
	if err := go_json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
