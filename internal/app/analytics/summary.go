package analytics

import (
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
)

// Trends holds the smoothed series shown on the trends dashboard.
type Trends struct {
	Mood     []MovingAveragePoint `bson:"mood" json:"mood" yaml:"mood"`
	Energy   []MovingAveragePoint `bson:"energy" json:"energy" yaml:"energy"`
	Appetite []MovingAveragePoint `bson:"appetite" json:"appetite" yaml:"appetite"`
	Sleep    []MovingAveragePoint `bson:"sleep" json:"sleep" yaml:"sleep"`
}

// Summary bundles every derived statistic for one user.
type Summary struct {
	Range        DateRange           `bson:"range" json:"range" yaml:"range"`
	CheckinCount int                 `bson:"checkin_count" json:"checkin_count" yaml:"checkin_count"`
	Streaks      StreakInfo          `bson:"streaks" json:"streaks" yaml:"streaks"`
	Correlations []CorrelationResult `bson:"correlations" json:"correlations" yaml:"correlations"`
	Cycle        *CyclePrediction    `bson:"cycle" json:"cycle" yaml:"cycle"`
	Trends       Trends              `bson:"trends" json:"trends" yaml:"trends"`
	Heatmap      []HeatmapPoint      `bson:"heatmap" json:"heatmap" yaml:"heatmap"`
}

// Summarize computes all statistics from a user's full history. Streaks and
// the cycle prediction use every check-in, since a streak or a cycle can start
// before the range; correlations, trends and the heatmap use only the
// check-ins inside r.
func Summarize(history []models.CheckIn, r DateRange, today time.Time, window int) (Summary, error) {
	inRange, err := FilterRange(history, r, today)
	if err != nil {
		return Summary{}, err
	}

	streaks, err := CalculateStreaks(history, today)
	if err != nil {
		return Summary{}, err
	}
	cycle, err := PredictCycle(history)
	if err != nil {
		return Summary{}, err
	}
	correlations, err := ComputeCorrelations(inRange)
	if err != nil {
		return Summary{}, err
	}

	var trends Trends
	for _, t := range []struct {
		metric Metric
		dst    *[]MovingAveragePoint
	}{
		{MetricMood, &trends.Mood},
		{MetricEnergy, &trends.Energy},
		{MetricAppetite, &trends.Appetite},
		{MetricSleep, &trends.Sleep},
	} {
		series, err := Trend(inRange, t.metric, window)
		if err != nil {
			return Summary{}, err
		}
		*t.dst = series
	}

	return Summary{
		Range:        r,
		CheckinCount: len(inRange),
		Streaks:      streaks,
		Correlations: correlations,
		Cycle:        cycle,
		Trends:       trends,
		Heatmap:      Heatmap(inRange),
	}, nil
}
