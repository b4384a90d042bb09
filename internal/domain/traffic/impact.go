package traffic

import "math"

// Level buckets a traffic-impact ratio for display.
type Level string

const (
	LevelUnknown  Level = "unknown"
	LevelFree     Level = "free"
	LevelLight    Level = "light"
	LevelModerate Level = "moderate"
	LevelHeavy    Level = "heavy"
	LevelSevere   Level = "severe"
)

// LevelFor classifies a ratio.
func LevelFor(ratio float64) Level {
	switch {
	case math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio < 0:
		return LevelUnknown
	case ratio < 1.1:
		return LevelFree
	case ratio < 1.25:
		return LevelLight
	case ratio < 1.5:
		return LevelModerate
	case ratio < 2.0:
		return LevelHeavy
	default:
		return LevelSevere
	}
}

// Ratio returns trafficDuration / baselineDuration, or nil when the baseline is not
// positive or either value is not finite.
func Ratio(trafficDuration, baselineDuration float64) *float64 {
	if baselineDuration <= 0 || !finite(baselineDuration) || !finite(trafficDuration) || trafficDuration < 0 {
		return nil
	}
	r := trafficDuration / baselineDuration
	return &r
}

// Impact is a coloured traffic-impact value.
type Impact struct {
	Ratio *float64 `json:"ratio"`
	Color string   `json:"color"`
	Level Level    `json:"level"`
}

// NewImpact colours ratio with scale; a nil ratio gets the no-data colour.
func NewImpact(ratio *float64, scale Scale) Impact {
	if ratio == nil {
		return Impact{Color: scale.NoDataColor(), Level: LevelUnknown}
	}
	return Impact{Ratio: ratio, Color: scale.ColorAt(*ratio), Level: LevelFor(*ratio)}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
