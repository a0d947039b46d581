package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eduwrench/simclient/sim/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent submissions",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := resolveHistoryPath()
		if err != nil {
			logrus.Fatalf("Failed to locate history database: %v", err)
		}
		store, err := history.Open(path)
		if err != nil {
			logrus.Fatalf("Failed to open history: %v", err)
		}
		defer func() { _ = store.Close() }()

		entries, err := store.Recent(historyLimit)
		if err != nil {
			logrus.Fatalf("Failed to read history: %v", err)
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No submissions recorded")
			return
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %-22s %-10s %4d records  %s\n",
				e.FinishedAt.Local().Format("2006-01-02 15:04:05"), e.Scenario, e.Outcome, e.Records, e.RequestID)
		}
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of entries to show")

	rootCmd.AddCommand(historyCmd)
}
