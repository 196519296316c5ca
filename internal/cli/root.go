// Package cli implements wellctl, an offline companion to the stratawell
// service. It runs the same analytics over a local file of check-ins.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes the environment variables that override flags,
// e.g. WELLCTL_FILE or WELLCTL_OUTPUT.
const EnvPrefix = "WELLCTL"

// options carries the resolved global settings into each command.
type options struct {
	v      *viper.Viper
	logger *zap.Logger
}

func (o *options) file() string     { return o.v.GetString("file") }
func (o *options) user() string     { return o.v.GetString("user") }
func (o *options) today() string    { return o.v.GetString("today") }
func (o *options) timezone() string { return o.v.GetString("timezone") }
func (o *options) output() string   { return o.v.GetString("output") }
func (o *options) dateRange() string {
	return o.v.GetString("range")
}

// NewRootCmd builds the wellctl command tree. Each call returns an
// independent tree, so tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	opts := &options{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "wellctl",
		Short: "Wellness analytics over a local check-in file",
		Long: `wellctl computes streaks, correlations, trends and cycle predictions
from a JSON or YAML file of daily check-ins, without a running server.

Every flag can also be set through a WELLCTL_* environment variable,
for example WELLCTL_FILE=checkins.yaml or WELLCTL_OUTPUT=json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.v.GetBool("debug") {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				opts.logger = logger
			}
			switch opts.output() {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q (use text, json or yaml)", opts.output())
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("file", "f", "", "check-in file (.json, .yaml or .yml)")
	pf.String("user", "", "only use check-ins with this user_id")
	pf.String("today", "", "treat this date (YYYY-MM-DD) as today (default: the current date)")
	pf.String("timezone", "UTC", "IANA time zone used to decide the current date")
	pf.String("range", "", "date range: 7d, 30d, 90d, 1y or all (default: 30d)")
	pf.StringP("output", "o", outputText, "output format: text, json or yaml")
	pf.Bool("debug", false, "log diagnostics to stderr")

	opts.v.SetEnvPrefix(EnvPrefix)
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()
	_ = opts.v.BindPFlags(pf)

	root.AddCommand(
		newSummaryCmd(opts),
		newStreaksCmd(opts),
		newCorrelationsCmd(opts),
		newTrendsCmd(opts),
		newCycleCmd(opts),
	)
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// Execute runs wellctl with os.Args and reports errors on stderr.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

// out returns the writer commands print results to.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
