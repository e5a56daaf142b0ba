package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/velohq/velo/internal/history"
	"github.com/velohq/velo/internal/output"
	"github.com/velohq/velo/internal/utils"
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <hosts.yaml>",
		Short: "Run a list of tests from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := utils.GetLogger("batch")
			entries, err := utils.ReadBatchList(args[0])
			if err != nil {
				return err
			}
			log.Info().Int("entries", len(entries)).Msg("Starting batch run")

			var rows [][]string
			failures := 0
			for i, entry := range entries {
				result, err := runBatchEntry(entry)
				if err != nil {
					log.Error().Err(err).Str("host", entry.Host).Msg("Batch entry failed")
					rows = append(rows, []string{entry.Host, entry.Kind, "failed: " + err.Error()})
					failures++
					continue
				}
				rows = append(rows, []string{entry.Host, entry.Kind, result})
				log.Info().Int("entry", i+1).Str("host", entry.Host).Str("result", result).Msg("Batch entry finished")
			}
			output.PrintTable([]string{"HOST", "KIND", "RESULT"}, rows)
			if failures > 0 {
				return fmt.Errorf("%d of %d batch entries failed", failures, len(entries))
			}
			return nil
		},
	}
}

func runBatchEntry(entry utils.BatchEntry) (string, error) {
	kind := strings.ToLower(entry.Kind)
	tester := newTester(cfg.LimitBytes)
	if kind == "ping" {
		conn, err := tester.Connect(entry.Host)
		if err != nil {
			return "", err
		}
		defer conn.Close()
		latency, err := tester.Ping(conn)
		if err != nil {
			return "", err
		}
		ms := float64(latency.Microseconds()) / 1000
		saveResult(history.Result{
			ID:          uuid.NewString(),
			Kind:        kind,
			Host:        entry.Host,
			Connections: 1,
			LatencyMs:   ms,
		})
		return output.FormatLatency(ms), nil
	}

	bytes := entry.Bytes
	if bytes == 0 {
		if kind == "upload" {
			bytes = cfg.UploadBytes
		} else {
			bytes = cfg.DownloadBytes
		}
	}
	connections := entry.Connections
	if connections == 0 {
		connections = cfg.Connections
	}
	mbps, err := runOnce(tester, kind, entry.Host, bytes, connections)
	if err != nil {
		return "", err
	}
	saveResult(history.Result{
		ID:          uuid.NewString(),
		Kind:        kind,
		Host:        entry.Host,
		Bytes:       bytes,
		Connections: connections,
		Mbps:        mbps,
	})
	return output.FormatMbps(mbps), nil
}
