package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/velohq/velo/internal/history"
	"github.com/velohq/velo/internal/output"
	"github.com/velohq/velo/internal/utils"
)

func newPingCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Measure round-trip latency to a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := utils.GetLogger("cmd")
			if count == 0 {
				count = cfg.PingCount
			}
			tester := newTester(0)
			host, err := resolveHost(tester)
			if err != nil {
				return err
			}
			conn, err := tester.Connect(host)
			if err != nil {
				return err
			}
			defer conn.Close()

			var total time.Duration
			for i := range count {
				latency, err := tester.Ping(conn)
				if err != nil {
					return err
				}
				log.Info().Int("seq", i+1).Dur("latency", latency).Msg("Ping")
				total += latency
			}
			avg := float64(total.Microseconds()) / float64(count) / 1000
			output.PrintSuccess(fmt.Sprintf("ping result: %s", output.FormatLatency(avg)))

			saveResult(history.Result{
				ID:          uuid.NewString(),
				Kind:        "ping",
				Host:        host,
				Connections: 1,
				LatencyMs:   avg,
			})
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "c", 0, "Number of pings (0 uses the configured default)")
	return cmd
}
