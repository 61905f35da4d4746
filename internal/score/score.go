// Package score computes the completeness score and tier for a synced
// dataset. Deterministic, no I/O: missing data lowers the score, it never
// raises an error.
package score

import (
	"math"

	"github.com/kanohealth/vitalvault/internal/metric"
)

// Tier is the coarse quality label derived from score and core coverage.
type Tier string

const (
	TierNone   Tier = "NONE"
	TierBronze Tier = "BRONZE"
	TierSilver Tier = "SILVER"
	TierGold   Tier = "GOLD"
)

const (
	coreWeight  = 50.0
	daysWeight  = 20.0
	extraWeight = 30.0

	daysCap   = 90
	extrasCap = 30

	// coreCompleteThreshold of the 9 core metrics must be present for the
	// coreComplete gate. Independent of the numeric score.
	coreCompleteThreshold = 7
)

// CompletenessResult is derived from the current sample set, never stored
// or mutated in place.
type CompletenessResult struct {
	Score        int  `json:"score"`
	Tier         Tier `json:"tier"`
	CoreComplete bool `json:"coreComplete"`
	DaysCovered  int  `json:"daysCovered"`
	RecordCount  int  `json:"recordCount"`
}

// Compute scores a dataset from the distinct metrics observed, the number
// of distinct calendar days with at least one sample, and the total raw
// sample count.
func Compute(metricsPresent []string, daysCovered, recordCount int) CompletenessResult {
	present := make(map[string]struct{}, len(metricsPresent))
	for _, id := range metricsPresent {
		present[id] = struct{}{}
	}

	core := metric.Core()
	corePresent := 0
	for _, id := range core {
		if _, ok := present[id]; ok {
			corePresent++
		}
	}
	extras := len(present) - corePresent

	coreScore := float64(corePresent) / float64(len(core)) * coreWeight
	daysScore := float64(min(daysCovered, daysCap)) / daysCap * daysWeight
	extraScore := float64(min(extras, extrasCap)) / extrasCap * extraWeight

	s := int(math.Round(coreScore + daysScore + extraScore))
	s = max(0, min(100, s))

	coreComplete := corePresent >= coreCompleteThreshold

	return CompletenessResult{
		Score:        s,
		Tier:         TierFor(s, coreComplete),
		CoreComplete: coreComplete,
		DaysCovered:  daysCovered,
		RecordCount:  recordCount,
	}
}

// TierFor derives the tier from a score and the coreComplete gate. A high
// score without core coverage caps out at bronze: breadth cannot
// substitute for the core vital signs.
func TierFor(score int, coreComplete bool) Tier {
	switch {
	case score >= 80 && coreComplete:
		return TierGold
	case score >= 60 && coreComplete:
		return TierSilver
	case score >= 40:
		return TierBronze
	default:
		return TierNone
	}
}
