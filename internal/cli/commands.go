package cli

import (
	"io"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show streaks, cycle prediction, correlations and trends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkins, err := opts.loadCheckins()
			if err != nil {
				return err
			}
			today, err := opts.resolveToday()
			if err != nil {
				return err
			}
			rng, err := analytics.ParseDateRange(opts.dateRange())
			if err != nil {
				return err
			}
			summary, err := analytics.Summarize(checkins, rng, today, opts.v.GetInt("window"))
			if err != nil {
				return err
			}
			return render(out(cmd), opts.output(), summary, func(w io.Writer) error {
				return writeSummary(w, summary)
			})
		},
	}
	addWindowFlag(cmd, opts)
	return cmd
}

func newStreaksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "streaks",
		Short: "Show the current and longest check-in streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkins, err := opts.loadCheckins()
			if err != nil {
				return err
			}
			today, err := opts.resolveToday()
			if err != nil {
				return err
			}
			streaks, err := analytics.CalculateStreaks(checkins, today)
			if err != nil {
				return err
			}
			return render(out(cmd), opts.output(), streaks, func(w io.Writer) error {
				return writeStreaks(w, streaks)
			})
		},
	}
}

func newCorrelationsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "correlations",
		Short: "List metric pairs that move together, strongest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inRange, err := opts.checkinsInRange()
			if err != nil {
				return err
			}
			results, err := analytics.ComputeCorrelations(inRange)
			if err != nil {
				return err
			}
			if results == nil {
				results = []analytics.CorrelationResult{}
			}
			return render(out(cmd), opts.output(), results, func(w io.Writer) error {
				return writeCorrelations(w, results)
			})
		},
	}
}

func newTrendsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show one metric with its trailing moving average",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := analytics.ParseMetric(opts.v.GetString("metric"))
			if err != nil {
				return err
			}
			inRange, err := opts.checkinsInRange()
			if err != nil {
				return err
			}
			points, err := analytics.Trend(inRange, metric, opts.v.GetInt("window"))
			if err != nil {
				return err
			}
			if points == nil {
				points = []analytics.MovingAveragePoint{}
			}
			return render(out(cmd), opts.output(), points, func(w io.Writer) error {
				return writeTrend(w, metric, points)
			})
		},
	}
	cmd.Flags().String("metric", string(analytics.MetricMood), "metric: mood, energy, appetite, sleep, exercise, period, bloating or sick")
	_ = opts.v.BindPFlag("metric", cmd.Flags().Lookup("metric"))
	addWindowFlag(cmd, opts)
	return cmd
}

func newCycleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Predict the next period from logged period days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkins, err := opts.loadCheckins()
			if err != nil {
				return err
			}
			prediction, err := analytics.PredictCycle(checkins)
			if err != nil {
				return err
			}
			return render(out(cmd), opts.output(), prediction, func(w io.Writer) error {
				return writeCycle(w, prediction)
			})
		},
	}
}

// addWindowFlag adds --window to cmd. summary and trends each own a flag
// object, so the viper key is bound when the command runs.
func addWindowFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().Int("window", 7, "moving-average window in points")
	prev := cmd.PreRunE
	cmd.PreRunE = func(c *cobra.Command, args []string) error {
		if err := opts.v.BindPFlag("window", c.Flags().Lookup("window")); err != nil {
			return err
		}
		if prev != nil {
			return prev(c, args)
		}
		return nil
	}
}

// checkinsInRange loads the file and keeps the check-ins inside --range.
func (o *options) checkinsInRange() ([]models.CheckIn, error) {
	checkins, err := o.loadCheckins()
	if err != nil {
		return nil, err
	}
	today, err := o.resolveToday()
	if err != nil {
		return nil, err
	}
	rng, err := analytics.ParseDateRange(o.dateRange())
	if err != nil {
		return nil, err
	}
	return analytics.FilterRange(checkins, rng, today)
}
