package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sectionsched/core/scheduler"
	"github.com/kilianp07/sectionsched/internal/dataset"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var solverCfg string
	cmd := &cobra.Command{
		Use:   "validate [dataset]",
		Short: "Check the configuration and a dataset without solving",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadSolver(solverCfg)
			if err != nil {
				return err
			}
			path := cfg.Input.Path
			if len(args) == 1 {
				path = args[0]
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: ok (time limit %s, horizon buffer %d min)\n",
				cfg.Solver.TimeLimit(), cfg.Solver.HorizonBuffer())
			var sinks []string
			for _, s := range cfg.Metrics.Sinks {
				sinks = append(sinks, s.Type)
			}
			if len(sinks) > 0 {
				fmt.Fprintf(out, "metrics sinks: %s\n", strings.Join(sinks, ", "))
			}
			if path == "" {
				return nil
			}
			ds, err := dataset.Load(path)
			if err != nil {
				return fmt.Errorf("%w: %w", scheduler.ErrInvalidInput, err)
			}
			m, err := scheduler.BuildModel(ds.Trains, ds.Tracks, cfg.Solver.HorizonBuffer())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "dataset: %d trains, %d tracks, longest crossing %d min, horizon %d min\n",
				len(ds.Trains), len(ds.Tracks), ds.Tracks.MaxDuration(), m.Horizon)
			for i, d := range m.Durations {
				fmt.Fprintf(out, "  track %d: %d min\n", i+1, d)
			}
			for _, i := range m.Clamped {
				fmt.Fprintf(out, "  warning: train %s priority %d clamped to weight 1\n", ds.Trains[i].Label(), ds.Trains[i].Priority)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&solverCfg, "solver-config", "", "standalone solver settings file replacing the solver section")
	return cmd
}
