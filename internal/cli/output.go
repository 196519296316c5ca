package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// render writes v in the requested format. text renders the human-readable
// form through the text callback.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func writeStreaks(w io.Writer, s analytics.StreakInfo) error {
	last := "never"
	if s.LastCheckinDate != nil {
		last = *s.LastCheckinDate
	}
	_, err := fmt.Fprintf(w, "Current streak: %d %s\nLongest streak: %d %s\nLast check-in:  %s\n",
		s.Current, days(s.Current), s.Longest, days(s.Longest), last)
	return err
}

func writeCorrelations(w io.Writer, results []analytics.CorrelationResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No correlations yet. Log a few more days to see patterns.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRICS\tR\tN\tINSIGHT")
	for _, c := range results {
		fmt.Fprintf(tw, "%s / %s\t%+.2f\t%d\t%s\n", c.Metric1, c.Metric2, c.Correlation, c.SampleSize, c.Insight)
	}
	return tw.Flush()
}

func writeTrend(w io.Writer, metric analytics.Metric, points []analytics.MovingAveragePoint) error {
	if len(points) == 0 {
		_, err := fmt.Fprintf(w, "No %s data in range.\n", metric.Label())
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "DATE\t%s\tAVERAGE\n", strings.ToUpper(string(metric)))
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%g\t%.2f\n", p.Date, p.Value, p.Average)
	}
	return tw.Flush()
}

func writeCycle(w io.Writer, c *analytics.CyclePrediction) error {
	if c == nil {
		_, err := fmt.Fprintln(w, "Not enough period data to predict the next cycle.")
		return err
	}
	_, err := fmt.Fprintf(w, "Next period:    %s to %s\nAverage cycle:  %d days (%d cycles, %s confidence)\n",
		c.NextPeriodStart, c.NextPeriodEnd, c.AverageCycleLength, c.CyclesUsed, c.Confidence)
	return err
}

func writeSummary(w io.Writer, s analytics.Summary) error {
	fmt.Fprintf(w, "Range: %s (%d check-ins)\n\n", s.Range, s.CheckinCount)
	if err := writeStreaks(w, s.Streaks); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := writeCycle(w, s.Cycle); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if len(s.Correlations) > 0 {
		top := s.Correlations
		if len(top) > 3 {
			top = top[:3]
		}
		fmt.Fprintln(w, "Strongest patterns:")
		for _, c := range top {
			fmt.Fprintf(w, "  - %s\n", c.Insight)
		}
		return nil
	}
	return writeCorrelations(w, nil)
}

func days(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
