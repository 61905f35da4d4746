package metric

import "strconv"

// SleepStage classifies a sleep analysis sample.
type SleepStage int

const (
	StageInBed SleepStage = iota
	StageAsleep
	StageAwake
	StageCore
	StageDeep
	StageREM
	// StageUnknown marks tags and codes the source did not recognize.
	// Unknown stages bucket into core so a single bad code never drops
	// sleep data from the day's summary.
	StageUnknown
)

var stageTags = map[string]SleepStage{
	"inBed":  StageInBed,
	"asleep": StageAsleep,
	"awake":  StageAwake,
	"core":   StageCore,
	"deep":   StageDeep,
	"rem":    StageREM,
}

func (s SleepStage) String() string {
	switch s {
	case StageInBed:
		return "inBed"
	case StageAsleep:
		return "asleep"
	case StageAwake:
		return "awake"
	case StageCore:
		return "core"
	case StageDeep:
		return "deep"
	case StageREM:
		return "rem"
	default:
		return "unknown"
	}
}

// ParseStage maps a string stage tag to its SleepStage.
func ParseStage(tag string) SleepStage {
	if s, ok := stageTags[tag]; ok {
		return s
	}
	return StageUnknown
}

// StageFromCode maps a numeric stage code (0-5) to its SleepStage.
func StageFromCode(code int) SleepStage {
	switch code {
	case 0:
		return StageInBed
	case 1:
		return StageAsleep
	case 2:
		return StageAwake
	case 3:
		return StageCore
	case 4:
		return StageDeep
	case 5:
		return StageREM
	default:
		return StageUnknown
	}
}

// StageOf resolves a sleep sample's stage: the string tag when present,
// the numeric value as a stage code otherwise.
func StageOf(s RawSample) SleepStage {
	if s.Stage != "" {
		if stage := ParseStage(s.Stage); stage != StageUnknown {
			return stage
		}
		// numeric codes sometimes arrive as strings
		if code, err := strconv.Atoi(s.Stage); err == nil {
			return StageFromCode(code)
		}
		return StageUnknown
	}
	return StageFromCode(int(s.Value))
}
