package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sectionsched/core/report"
	"github.com/kilianp07/sectionsched/pkg/export"
)

func newReportCmd() *cobra.Command {
	var (
		asJSON bool
		tracks int
	)
	cmd := &cobra.Command{
		Use:   "report <schedule.json>",
		Short: "Summarize a written schedule per priority class and track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			doc, trains, err := export.ReadJSON(f)
			if err != nil {
				return err
			}
			sum := report.Summarize(trains, tracks)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			return printSummary(cmd.OutOrStdout(), doc, sum)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().IntVar(&tracks, "tracks", 0, "number of section tracks, to list unused ones")
	return cmd
}

func printSummary(w io.Writer, doc export.Document, sum report.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run %s\tstatus %s\n", doc.RunID, doc.Status)
	fmt.Fprintf(tw, "last clearance\t%s (day %d)\n", doc.LastClearance, doc.LastClearanceDay)
	fmt.Fprintf(tw, "span\t%d min\n", sum.Span)
	fmt.Fprintf(tw, "mean wait\t%.1f min\n\n", sum.MeanWait)

	fmt.Fprintln(tw, "PRIORITY\tTRAINS\tMEAN WAIT\tSTDDEV\tMAX WAIT\tMEAN EXIT")
	for _, p := range sum.Priorities {
		fmt.Fprintf(tw, "%d\t%d\t%.1f\t%.1f\t%.0f\t%.1f\n", p.Priority, p.Trains, p.MeanWait, p.StdDevWait, p.MaxWait, p.MeanExit)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "TRACK\tTRAINS\tBUSY\tUTILIZATION")
	for _, t := range sum.Tracks {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.0f%%\n", t.Track, t.Trains, t.BusyMinutes, t.Utilization*100)
	}
	return tw.Flush()
}
