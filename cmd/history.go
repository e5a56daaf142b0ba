package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/velohq/velo/internal/history"
	"github.com/velohq/velo/internal/output"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent test results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()
			results, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				output.PrintInfo("No results recorded yet")
				return nil
			}
			var rows [][]string
			for _, r := range results {
				value := output.FormatMbps(r.Mbps)
				if r.Kind == "ping" {
					value = output.FormatLatency(r.LatencyMs)
				}
				rows = append(rows, []string{
					r.Timestamp.Format(time.DateTime),
					r.Kind,
					r.Host,
					output.FormatBytes(uint64(r.Bytes)),
					strconv.Itoa(r.Connections),
					value,
				})
			}
			output.PrintTable([]string{"TIME", "KIND", "HOST", "SIZE", "CONNS", "RESULT"}, rows)
			output.PrintDetail(fmt.Sprintf("%d result(s)", len(results)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "number", "N", 20, "Maximum number of results to show")
	return cmd
}
