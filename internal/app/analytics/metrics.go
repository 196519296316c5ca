package analytics

import (
	"fmt"

	"github.com/dalemusser/stratawell/internal/domain/models"
)

// Metric identifies a numeric signal extracted from a check-in.
type Metric string

const (
	MetricMood     Metric = "mood"
	MetricEnergy   Metric = "energy"
	MetricAppetite Metric = "appetite"
	MetricSleep    Metric = "sleep"
	MetricExercise Metric = "exercise"
	MetricPeriod   Metric = "period"
	MetricBloating Metric = "bloating"
	MetricSick     Metric = "sick"
)

type metricDef struct {
	key   Metric
	label string
	// extract returns the metric's value and whether it was logged.
	extract func(c models.CheckIn) (float64, bool)
}

// metrics is the fixed metric set, in the order pairs are formed.
var metrics = []metricDef{
	{MetricMood, "mood", func(c models.CheckIn) (float64, bool) { return intValue(c.MoodScore) }},
	{MetricEnergy, "energy levels", func(c models.CheckIn) (float64, bool) { return intValue(c.EnergyScore) }},
	{MetricAppetite, "appetite", func(c models.CheckIn) (float64, bool) { return intValue(c.Appetite) }},
	{MetricSleep, "sleep hours", func(c models.CheckIn) (float64, bool) { return floatValue(c.SleepHours) }},
	{MetricExercise, "exercising", func(c models.CheckIn) (float64, bool) { return boolValue(c.Exercised) }},
	{MetricPeriod, "your period", func(c models.CheckIn) (float64, bool) { return boolValue(c.Period) }},
	{MetricBloating, "bloating", func(c models.CheckIn) (float64, bool) { return boolValue(c.Bloating) }},
	{MetricSick, "feeling sick", func(c models.CheckIn) (float64, bool) { return boolValue(c.Sick) }},
}

// Metrics returns the fixed metric set in pairing order.
func Metrics() []Metric {
	out := make([]Metric, len(metrics))
	for i, m := range metrics {
		out[i] = m.key
	}
	return out
}

// Label returns the display phrase used for m in insight sentences.
func (m Metric) Label() string {
	if def, ok := lookupMetric(m); ok {
		return def.label
	}
	return string(m)
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	if _, ok := lookupMetric(Metric(s)); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return Metric(s), nil
}

func lookupMetric(m Metric) (metricDef, bool) {
	for _, def := range metrics {
		if def.key == m {
			return def, true
		}
	}
	return metricDef{}, false
}

func intValue(p *int) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return float64(*p), true
}

func floatValue(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func boolValue(b bool) (float64, bool) {
	if b {
		return 1, true
	}
	return 0, true
}
