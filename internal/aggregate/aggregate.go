// Package aggregate reduces raw biometric samples into per-day summaries.
// Everything here is pure computation: no I/O, no retries, and malformed
// input degrades instead of failing.
package aggregate

import (
	"github.com/kanohealth/vitalvault/internal/metric"
)

// Aggregate groups samples by metric and calendar day and reduces each
// group into the day's summary. Samples outside the range are skipped.
// A sample's day comes from its start timestamp, except sleep samples,
// which belong to the day they end on.
func Aggregate(samples []metric.RawSample, r metric.DateRange) map[metric.Day]*DailySummary {
	days := make(map[metric.Day]*DailySummary)

	type acc struct {
		sum   float64
		min   float64
		max   float64
		count int
	}
	groups := make(map[metric.Day]map[string]*acc)
	sleepCounts := make(map[metric.Day]int)

	for _, s := range samples {
		// range membership follows day attribution: sleep samples belong to
		// the day they end on, so a session straddling the range opening is
		// kept when its end falls inside.
		at := s.Start
		if s.MetricID == metric.SleepAnalysis {
			at = s.End
		}
		if !r.Contains(at) {
			continue
		}

		day := s.Day()
		ds, ok := days[day]
		if !ok {
			ds = &DailySummary{Date: day, Metrics: make(map[string]MetricSummary)}
			days[day] = ds
		}

		if s.MetricID == metric.SleepAnalysis {
			foldSleep(ds, s)
			sleepCounts[day]++
			continue
		}

		byMetric, ok := groups[day]
		if !ok {
			byMetric = make(map[string]*acc)
			groups[day] = byMetric
		}
		a, ok := byMetric[s.MetricID]
		if !ok {
			a = &acc{min: s.Value, max: s.Value}
			byMetric[s.MetricID] = a
		}
		a.sum += s.Value
		if s.Value < a.min {
			a.min = s.Value
		}
		if s.Value > a.max {
			a.max = s.Value
		}
		a.count++
	}

	for day, byMetric := range groups {
		ds := days[day]
		for id, a := range byMetric {
			if metric.KindOf(id) == metric.KindAdditive {
				ds.Metrics[id] = MetricSummary{
					Kind:  metric.KindAdditive,
					Total: a.sum,
					Count: a.count,
				}
				continue
			}
			ds.Metrics[id] = MetricSummary{
				Kind:  metric.KindSampled,
				Avg:   a.sum / float64(a.count),
				Min:   a.min,
				Max:   a.max,
				Count: a.count,
			}
		}
	}

	for day, ds := range days {
		finishSleep(ds, sleepCounts[day])
	}

	return days
}

// foldSleep adds one sleep sample's duration into the day's stage buckets.
// Unrecognized stages fall back to the core bucket rather than erroring:
// losing a whole night of sleep data to one bad code is worse than
// misbucketing it.
func foldSleep(ds *DailySummary, s metric.RawSample) {
	if ds.Sleep == nil {
		ds.Sleep = &SleepSummary{}
	}

	minutes := s.Minutes()
	if minutes <= 0 {
		return
	}

	switch metric.StageOf(s) {
	case metric.StageInBed:
		ds.Sleep.InBedMinutes += minutes
	case metric.StageAwake:
		ds.Sleep.AwakeMinutes += minutes
	case metric.StageDeep:
		ds.Sleep.DeepMinutes += minutes
	case metric.StageREM:
		ds.Sleep.RemMinutes += minutes
	default:
		// core, unspecified asleep, and unknown stages
		ds.Sleep.CoreMinutes += minutes
	}
}

func finishSleep(ds *DailySummary, sampleCount int) {
	sl := ds.Sleep
	if sl == nil {
		return
	}

	sl.TotalMinutesAsleep = sl.CoreMinutes + sl.DeepMinutes + sl.RemMinutes
	if sl.InBedMinutes > 0 {
		eff := sl.TotalMinutesAsleep / sl.InBedMinutes
		sl.Efficiency = &eff
	}

	ds.Metrics[metric.SleepAnalysis] = MetricSummary{
		Kind:  metric.KindAdditive,
		Total: sl.TotalMinutesAsleep,
		Count: sampleCount,
	}
}

// RecordCount returns the number of raw samples folded across all days.
// Out-of-range samples the aggregator skipped are not counted.
func RecordCount(days map[metric.Day]*DailySummary) int {
	n := 0
	for _, ds := range days {
		for _, m := range ds.Metrics {
			n += m.Count
		}
	}
	return n
}

// MetricsPresent returns the distinct metric identifiers observed across
// all days.
func MetricsPresent(days map[metric.Day]*DailySummary) []string {
	seen := make(map[string]struct{})
	for _, ds := range days {
		for id := range ds.Metrics {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}
