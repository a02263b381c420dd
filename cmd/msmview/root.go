package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/msmview/internal/datasource"
	"github.com/vanderheijden86/msmview/pkg/config"
	"github.com/vanderheijden86/msmview/pkg/debug"
	"github.com/vanderheijden86/msmview/pkg/loader"
	"github.com/vanderheijden86/msmview/pkg/metrics"
	"github.com/vanderheijden86/msmview/pkg/model"
	"github.com/vanderheijden86/msmview/pkg/version"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	cfgPath string
	verbose bool
	timings bool
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:   "msmview [dataset]",
		Short: "Explore a Markov state model in the terminal",
		Long: `msmview shows a precomputed Markov-state-model analysis as one linked
figure: the free-energy surface, cluster overlays, implied time scales and
the representative structure of each cluster.

Picking an implied-timescale curve swaps the surface for that process's
eigenvector. Picking a cluster in the legend outlines it on the surface and
shows its structure. Picking the same item again clears it.

The dataset is a directory or a bundle written by "msmview bundle". When no
path is given, $MSMVIEW_DATA and then data_path from the config file are used.`,
		Version:       version.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, firstArg(args), viewFlags{watch: true})
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/msmview/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "write debug logs to stderr")
	root.PersistentFlags().BoolVar(&a.timings, "timings", false, "print load and render timings on exit")

	root.AddCommand(
		a.newViewCmd(),
		a.newExportCmd(),
		a.newInfoCmd(),
		a.newBundleCmd(),
	)
	return root
}

// setup loads configuration. A broken config file is reported and the
// defaults are used instead.
func (a *app) setup(cmd *cobra.Command) error {
	if a.verbose {
		debug.SetEnabled(true)
		debug.SetOutput(cmd.ErrOrStderr())
	}
	if a.timings {
		metrics.SetEnabled(true)
	}

	var (
		cfg config.Config
		err error
	)
	if a.cfgPath != "" {
		cfg, err = config.LoadFrom(a.cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg
	return nil
}

// load resolves the dataset path and reads it.
func (a *app) load(ctx context.Context, arg string) (*model.Dataset, datasource.DataSource, error) {
	path, err := loader.ResolveDataPath(arg, a.cfg.DataPath)
	if err != nil {
		return nil, datasource.DataSource{}, err
	}
	return datasource.Load(ctx, path, a.loaderOptions())
}

func (a *app) loaderOptions() loader.Options {
	return loader.Options{EigenvectorLevels: a.cfg.Surface.EigenvectorLevels}
}

// printTimings writes the collected timing stats when --timings is set.
func (a *app) printTimings(cmd *cobra.Command) {
	if !a.timings {
		return
	}
	w := cmd.ErrOrStderr()
	fmt.Fprintln(w, "Timings:")
	for _, s := range metrics.AllTimingStats() {
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-14s n=%-4d avg=%8.2fms max=%8.2fms\n", s.Name, s.Count, s.AvgMs, s.MaxMs)
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// isTerminal is swapped out in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
