package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sectionsched/core/runlog"
)

func newRunsCmd(root *rootOptions) *cobra.Command {
	var (
		since  time.Duration
		status string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded solve runs from the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cfg.RunLog.Backend == "none" {
				return fmt.Errorf("runlog backend is none, nothing is recorded")
			}
			store, err := runlog.Open(cfg.RunLog)
			if err != nil {
				return err
			}
			defer store.Close()
			q := runlog.Query{Status: status, Limit: limit}
			if since > 0 {
				q.Start = time.Now().Add(-since)
			}
			recs, err := store.Query(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				for _, r := range recs {
					if err := enc.Encode(r); err != nil {
						return err
					}
				}
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tRUN\tSTATUS\tOBJECTIVE\tTRAINS\tTRACKS\tLAST CLEARANCE\tELAPSED")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%dms\n",
					r.Timestamp.Format(time.RFC3339), r.RunID, r.Status, r.Objective,
					r.Trains, r.Tracks, r.LastClearance, r.ElapsedMS)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.DurationVar(&since, "since", 0, "only runs newer than this (e.g. 24h)")
	f.StringVar(&status, "status", "", "only runs with this status")
	f.IntVar(&limit, "limit", 20, "most recent runs to show, 0 for all")
	f.BoolVar(&asJSON, "json", false, "print records as JSON lines")
	return cmd
}
