package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the test collection in display order",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	tr, cleanup, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	tests := tr.Sorted()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tID\tREF\tNAME\tSTATUS\tTARGET\tACHIEVED\tRUNS")

	for _, t := range tests {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.0f\t%.0f\t%d\n",
			t.Sequence, t.ID, t.Ref, t.Name, t.Status,
			t.Execution.Target, t.Execution.Achieved, len(t.TestRuns))
	}

	return w.Flush()
}
