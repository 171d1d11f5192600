package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sectionsched/app"
	"github.com/kilianp07/sectionsched/core/solver"
)

type solveOptions struct {
	solverCfg string
	output    string
	csv       string
	timeLimit float64
	workers   int
	progress  bool
}

func newSolveCmd(root *rootOptions) *cobra.Command {
	o := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve [dataset]",
		Short: "Schedule the trains of a dataset across the section",
		Long: "Solve reads a dataset (JSON or YAML), computes the schedule minimizing the\n" +
			"priority-weighted completion time and writes it to stdout or --output.\n" +
			"Exit status is 2 when no schedule exists and 3 when the time limit\n" +
			"expires before one is found.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, root, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.solverCfg, "solver-config", "", "standalone solver settings file replacing the solver section")
	f.StringVarP(&o.output, "output", "o", "", "write the schedule JSON to this file instead of stdout")
	f.StringVar(&o.csv, "csv", "", "also write the schedule table as CSV")
	f.Float64Var(&o.timeLimit, "time-limit", 0, "search budget in seconds (overrides solver.time_limit_seconds)")
	f.IntVar(&o.workers, "workers", 0, "concurrent search strategies (overrides solver.workers)")
	f.BoolVar(&o.progress, "progress", false, "print every improved schedule to stderr")
	return cmd
}

func runSolve(cmd *cobra.Command, root *rootOptions, o *solveOptions, args []string) error {
	cfg, err := root.loadSolver(o.solverCfg)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Input.Path = args[0]
	}
	if o.output != "" {
		cfg.Output.Path = o.output
	}
	if o.csv != "" {
		cfg.Output.CSVPath = o.csv
	}
	if cmd.Flags().Changed("time-limit") {
		cfg.Solver.TimeLimitSeconds = o.timeLimit
	}
	if cmd.Flags().Changed("workers") {
		cfg.Solver.Workers = o.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := []app.Option{app.WithStdout(cmd.OutOrStdout())}
	if o.progress {
		stderr := cmd.ErrOrStderr()
		opts = append(opts, app.WithProgress(func(im solver.Improvement) {
			fmt.Fprintf(stderr, "objective %d (%s) after %s\n", im.Objective, im.Strategy, im.Elapsed)
		}))
	}
	svc, err := app.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			cfg.Logging.Logger("main").Errorf("service close: %v", cerr)
		}
	}()
	res, err := svc.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run %s: %w", res.RunID, err)
	}
	return nil
}
