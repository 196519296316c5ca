package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
)

// Cycle segmentation heuristic. These thresholds are fixed rules of thumb, not
// statistically derived, and are kept stable so predictions stay comparable
// across releases. Revisit them together if the heuristic changes.
const (
	// NewCycleGapDays: a period day more than this many days after the
	// previous period day starts a new cycle.
	NewCycleGapDays = 5
	// MinCycleLength and MaxCycleLength bound plausible cycle lengths; lengths
	// outside are dropped before averaging.
	MinCycleLength = 18
	MaxCycleLength = 45
	// RecentCycleWindow is how many of the latest valid cycles are averaged.
	RecentCycleWindow = 6
	// DefaultPeriodDuration is used when the last cycle has no logged days.
	DefaultPeriodDuration = 5
	// PeriodDurationScanDays is how far past the last cycle start period days
	// are counted toward its duration.
	PeriodDurationScanDays = 10
)

// Confidence grades a cycle prediction by how many cycles back it.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// CyclePrediction estimates the next period window.
type CyclePrediction struct {
	AverageCycleLength int        `bson:"average_cycle_length" json:"average_cycle_length" yaml:"average_cycle_length"`
	NextPeriodStart    string     `bson:"next_period_start" json:"next_period_start" yaml:"next_period_start"`
	NextPeriodEnd      string     `bson:"next_period_end" json:"next_period_end" yaml:"next_period_end"`
	Confidence         Confidence `bson:"confidence" json:"confidence" yaml:"confidence"`
	CyclesUsed         int        `bson:"cycles_used" json:"cycles_used" yaml:"cycles_used"`
}

// PredictCycle groups period-flagged days into cycles, averages the recent
// plausible cycle lengths and projects the next period from the last cycle
// start. It returns nil when there are fewer than two period days, fewer than
// two cycles, or no plausible cycle lengths.
func PredictCycle(checkins []models.CheckIn) (*CyclePrediction, error) {
	if err := validateDates(checkins); err != nil {
		return nil, err
	}

	var periodDays []time.Time
	for _, c := range checkins {
		if !c.Period {
			continue
		}
		d, _ := parseDate(c.Date)
		periodDays = append(periodDays, d)
	}
	if len(periodDays) < 2 {
		return nil, nil
	}
	sort.Slice(periodDays, func(i, j int) bool { return periodDays[i].Before(periodDays[j]) })

	cycleStarts := []time.Time{periodDays[0]}
	for i := 1; i < len(periodDays); i++ {
		if daysBetween(periodDays[i], periodDays[i-1]) > NewCycleGapDays {
			cycleStarts = append(cycleStarts, periodDays[i])
		}
	}
	if len(cycleStarts) < 2 {
		return nil, nil
	}

	var lengths []int
	for i := 1; i < len(cycleStarts); i++ {
		n := daysBetween(cycleStarts[i], cycleStarts[i-1])
		if n >= MinCycleLength && n <= MaxCycleLength {
			lengths = append(lengths, n)
		}
	}
	if len(lengths) == 0 {
		return nil, nil
	}

	recent := lengths
	if len(recent) > RecentCycleWindow {
		recent = recent[len(recent)-RecentCycleWindow:]
	}
	sum := 0
	for _, n := range recent {
		sum += n
	}
	avg := int(math.Floor(float64(sum)/float64(len(recent)) + 0.5))

	lastStart := cycleStarts[len(cycleStarts)-1]
	duration := 0
	for _, d := range periodDays {
		diff := daysBetween(d, lastStart)
		if diff >= 0 && diff < PeriodDurationScanDays {
			duration++
		}
	}
	if duration == 0 {
		duration = DefaultPeriodDuration
	}

	nextStart := lastStart.AddDate(0, 0, avg)
	nextEnd := nextStart.AddDate(0, 0, duration-1)

	return &CyclePrediction{
		AverageCycleLength: avg,
		NextPeriodStart:    formatDate(nextStart),
		NextPeriodEnd:      formatDate(nextEnd),
		Confidence:         confidenceFor(len(recent)),
		CyclesUsed:         len(recent),
	}, nil
}

func confidenceFor(cycles int) Confidence {
	switch {
	case cycles >= 4:
		return ConfidenceHigh
	case cycles >= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
