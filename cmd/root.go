// Package cmd implements the sectionsched command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sectionsched/config"
	"github.com/kilianp07/sectionsched/core/scheduler"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitInfeasible = 2
	ExitNoSolution = 3
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, scheduler.ErrInfeasible):
		return ExitInfeasible
	case errors.Is(err, scheduler.ErrNoSolution):
		return ExitNoSolution
	default:
		return ExitError
	}
}

type rootOptions struct {
	cfgPath string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "sectionsched",
		Short:         "Conflict-free train section scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "", "configuration file (JSON or YAML)")
	root.AddCommand(
		newSolveCmd(opts),
		newValidateCmd(opts),
		newReportCmd(),
		newRunsCmd(opts),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
	}
	return ExitCode(err)
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadSolver is load with the solver section replaced by a standalone solver
// file when solverPath is set.
func (o *rootOptions) loadSolver(solverPath string) (*config.Config, error) {
	cfg, err := o.load()
	if err != nil || solverPath == "" {
		return cfg, err
	}
	sc, err := scheduler.LoadConfig(solverPath)
	if err != nil {
		return nil, fmt.Errorf("load solver config: %w", err)
	}
	cfg.Solver = sc
	return cfg, nil
}
