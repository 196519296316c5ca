package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/montanaflynn/stats"
)

// DefaultTrendWindow is the moving-average window used for dashboard trends.
const DefaultTrendWindow = 7

// Point is one dated value in a time series.
type Point struct {
	Date  string  `bson:"date" json:"date" yaml:"date"`
	Value float64 `bson:"value" json:"value" yaml:"value"`
}

// MovingAveragePoint is a Point with its trailing average attached.
type MovingAveragePoint struct {
	Date    string  `bson:"date" json:"date" yaml:"date"`
	Value   float64 `bson:"value" json:"value" yaml:"value"`
	Average float64 `bson:"average" json:"average" yaml:"average"`
}

// HeatmapPoint is one calendar cell: the day's mood score, or 0 when unlogged.
type HeatmapPoint struct {
	Date  string `bson:"date" json:"date" yaml:"date"`
	Count int    `bson:"count" json:"count" yaml:"count"`
}

// CalculateMovingAverage sorts points by date and averages each point with
// up to window-1 points before it. The first points of the series average
// over fewer values; there is no padding and no look-ahead. Averages are
// rounded to two decimals.
func CalculateMovingAverage(points []Point, window int) ([]MovingAveragePoint, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	for _, p := range points {
		if _, err := parseDate(p.Date); err != nil {
			return nil, err
		}
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	values := make([]float64, len(sorted))
	for i, p := range sorted {
		values[i] = p.Value
	}

	out := make([]MovingAveragePoint, len(sorted))
	for i, p := range sorted {
		start := max(0, i-window+1)
		avg, err := stats.Mean(values[start : i+1])
		if err != nil {
			return nil, err
		}
		out[i] = MovingAveragePoint{
			Date:    p.Date,
			Value:   p.Value,
			Average: round2(avg),
		}
	}
	return out, nil
}

// Series extracts the logged values of m, in input order.
func Series(checkins []models.CheckIn, m Metric) []Point {
	def, ok := lookupMetric(m)
	if !ok {
		return []Point{}
	}
	out := make([]Point, 0, len(checkins))
	for _, c := range checkins {
		if v, ok := def.extract(c); ok {
			out = append(out, Point{Date: c.Date, Value: v})
		}
	}
	return out
}

// Trend is Series followed by CalculateMovingAverage.
func Trend(checkins []models.CheckIn, m Metric, window int) ([]MovingAveragePoint, error) {
	if _, ok := lookupMetric(m); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
	}
	return CalculateMovingAverage(Series(checkins, m), window)
}

// Heatmap maps each check-in to its mood score for calendar display.
func Heatmap(checkins []models.CheckIn) []HeatmapPoint {
	out := make([]HeatmapPoint, len(checkins))
	for i, c := range checkins {
		count := 0
		if c.MoodScore != nil {
			count = *c.MoodScore
		}
		out[i] = HeatmapPoint{Date: c.Date, Count: count}
	}
	return out
}

// round2 rounds half up to two decimals.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
