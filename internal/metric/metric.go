package metric

// Identifiers for the core biometric signals. The completeness gate and
// the scorer both key off this fixed set.
const (
	Steps            = "steps"
	HeartRate        = "heart_rate"
	HRV              = "hrv"
	RestingHeartRate = "resting_heart_rate"
	ActiveEnergy     = "active_energy"
	ExerciseTime     = "exercise_time"
	VO2Max           = "vo2_max"
	RespiratoryRate  = "respiratory_rate"
	SleepAnalysis    = "sleep_analysis"
)

// Core returns the fixed set of core metric identifiers.
func Core() []string {
	return []string{
		Steps,
		HeartRate,
		HRV,
		RestingHeartRate,
		ActiveEnergy,
		ExerciseTime,
		VO2Max,
		RespiratoryRate,
		SleepAnalysis,
	}
}

// Kind determines how a day's worth of samples for a metric is reduced.
type Kind int

const (
	// KindAdditive metrics are summed across the day (steps, calories).
	KindAdditive Kind = iota
	// KindSampled metrics are reduced to avg/min/max (heart rate, HRV).
	KindSampled
)

var additive = map[string]struct{}{
	Steps:                    {},
	ActiveEnergy:             {},
	ExerciseTime:             {},
	"basal_energy":           {},
	"stand_time":             {},
	"distance_walking":       {},
	"flights_climbed":        {},
	"dietary_energy":         {},
	"dietary_water":          {},
	"swimming_distance":      {},
	"cycling_distance":       {},
	"mindful_minutes":        {},
	"time_in_daylight":       {},
	"number_of_times_fallen": {},
}

// KindOf reports how samples of the given metric are reduced. Metrics not
// known to be additive are treated as sampled.
func KindOf(id string) Kind {
	if _, ok := additive[id]; ok {
		return KindAdditive
	}
	return KindSampled
}
