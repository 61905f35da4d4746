package metric

import "time"

// Day is a canonical calendar day string (YYYY-MM-DD) in the timezone the
// sample was recorded in.
type Day string

const dayLayout = "2006-01-02"

func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

func (d Day) String() string { return string(d) }

// DateRange is a half-open-ended interval [Start, End] over sample time.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RawSample is a single reading from the sample source. Immutable once
// produced.
//
// Value carries the numeric reading. Sleep analysis samples instead carry
// a stage: either Stage (string tag) or, when Stage is empty, Value as a
// numeric stage code. A sleep sample's duration is End minus Start.
type RawSample struct {
	MetricID  string
	Value     float64
	Stage     string
	Start     time.Time
	End       time.Time
	SourceTag string
}

// Day returns the calendar day the sample belongs to. Sleep samples group
// by their end timestamp: a sleep session belongs to the morning it ends.
func (s RawSample) Day() Day {
	if s.MetricID == SleepAnalysis {
		return DayOf(s.End)
	}
	return DayOf(s.Start)
}

// Minutes returns the sample's duration in minutes.
func (s RawSample) Minutes() float64 {
	return s.End.Sub(s.Start).Minutes()
}
