package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/montanaflynn/stats"
)

// MinCorrelationSamples is the fewest co-present samples a pair needs.
const MinCorrelationSamples = 5

// CorrelationResult is the Pearson correlation between two metrics.
type CorrelationResult struct {
	Metric1     Metric  `bson:"metric1" json:"metric1" yaml:"metric1"`
	Metric2     Metric  `bson:"metric2" json:"metric2" yaml:"metric2"`
	Correlation float64 `bson:"correlation" json:"correlation" yaml:"correlation"` // -1..1
	SampleSize  int     `bson:"sample_size" json:"sample_size" yaml:"sample_size"`
	Insight     string  `bson:"insight" json:"insight" yaml:"insight"`
}

// ComputeCorrelations correlates every unordered pair of metrics over the
// check-ins where both are logged. Pairs with fewer than MinCorrelationSamples
// samples, a constant side, or an undefined coefficient are left out. Results
// are ordered by descending |r|; ties keep pair order.
func ComputeCorrelations(checkins []models.CheckIn) ([]CorrelationResult, error) {
	if err := validateDates(checkins); err != nil {
		return nil, err
	}

	results := []CorrelationResult{}
	for i := 0; i < len(metrics); i++ {
		for j := i + 1; j < len(metrics); j++ {
			m1, m2 := metrics[i], metrics[j]

			xs := make([]float64, 0, len(checkins))
			ys := make([]float64, 0, len(checkins))
			for _, c := range checkins {
				v1, ok1 := m1.extract(c)
				v2, ok2 := m2.extract(c)
				if ok1 && ok2 {
					xs = append(xs, v1)
					ys = append(ys, v2)
				}
			}

			if len(xs) < MinCorrelationSamples {
				continue
			}
			if isConstant(xs) || isConstant(ys) {
				continue
			}

			r, err := stats.Correlation(xs, ys)
			if err != nil || math.IsNaN(r) {
				continue
			}

			results = append(results, CorrelationResult{
				Metric1:     m1.key,
				Metric2:     m2.key,
				Correlation: r,
				SampleSize:  len(xs),
				Insight:     insight(m1.label, m2.label, r),
			})
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return math.Abs(results[a].Correlation) > math.Abs(results[b].Correlation)
	})
	return results, nil
}

// isConstant reports whether every value is the same (zero variance).
func isConstant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

// insight turns r into a one-sentence description.
func insight(label1, label2 string, r float64) string {
	abs := math.Abs(r)
	direction := "negatively"
	if r > 0 {
		direction = "positively"
	}

	switch {
	case abs < 0.2:
		return fmt.Sprintf("Little connection between %s and %s.", label1, label2)
	case abs < 0.4:
		return fmt.Sprintf("Mild %s link between %s and %s.", direction, label1, label2)
	case abs < 0.6:
		return fmt.Sprintf("Moderate %s correlation between %s and %s.", direction, label1, label2)
	default:
		return fmt.Sprintf("Strong %s correlation between %s and %s.", direction, label1, label2)
	}
}
