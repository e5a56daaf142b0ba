package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/velohq/velo/internal/history"
	"github.com/velohq/velo/internal/output"
	"github.com/velohq/velo/internal/speedtest"
	"github.com/velohq/velo/internal/utils"
)

type transferFlags struct {
	bytes       int64
	connections int
	count       int
	limit       int
}

func (f *transferFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64VarP(&f.bytes, "bytes", "b", 0, "Number of bytes to transfer (0 uses the configured default)")
	cmd.Flags().IntVarP(&f.connections, "connections", "t", 0, "Number of parallel connections (0 uses the configured default)")
	cmd.Flags().IntVarP(&f.count, "count", "c", 0, "Number of test repetitions (0 uses the configured default)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Per-connection rate cap in bytes per second")
}

func newUploadCmd() *cobra.Command {
	var flags transferFlags
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Run an upload throughput test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfer("upload", &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newDownloadCmd() *cobra.Command {
	var flags transferFlags
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Run a download throughput test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfer("download", &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// runTransfer resolves the endpoint, repeats the test count times with a
// short pause in between and reports the averaged throughput.
func runTransfer(kind string, flags *transferFlags) error {
	log := utils.GetLogger("cmd").With().Str("run", uuid.NewString()[:8]).Logger()
	bytes := flags.bytes
	if bytes == 0 {
		if kind == "upload" {
			bytes = cfg.UploadBytes
		} else {
			bytes = cfg.DownloadBytes
		}
	}
	connections := flags.connections
	if connections == 0 {
		connections = cfg.Connections
	}
	count := flags.count
	if count == 0 {
		count = cfg.Count
	}
	limit := flags.limit
	if limit == 0 {
		limit = cfg.LimitBytes
	}

	// Multi-connection runs round the budget down to a multiple of the
	// connection count, so the progress denominator has to match.
	effective := bytes / int64(connections) * int64(connections)
	tester := newTester(limit, speedtest.WithSampleFunc(func(s speedtest.SpeedSample) {
		fmt.Printf("\r%s", output.ProgressLine(s.Transferred, effective, s.Mbps))
	}))
	host, err := resolveHost(tester)
	if err != nil {
		return err
	}
	log.Info().Str("kind", kind).Str("host", host).Str("size", output.FormatBytes(uint64(bytes))).
		Int("connections", connections).Int("count", count).Msg("Starting test")

	var total float64
	for i := range count {
		if i > 0 {
			time.Sleep(500 * time.Millisecond)
		}
		mbps, err := runOnce(tester, kind, host, bytes, connections)
		if err != nil {
			return err
		}
		log.Info().Int("seq", i+1).Str("result", output.FormatMbps(mbps)).Msg("Test finished")
		total += mbps
	}
	fmt.Print("\r\033[2K") // clear any leftover progress line
	avg := total / float64(count)
	output.PrintSuccess(fmt.Sprintf("%s result: %s", kind, output.FormatMbps(avg)))

	saveResult(history.Result{
		ID:          uuid.NewString(),
		Kind:        kind,
		Host:        host,
		Bytes:       bytes,
		Connections: connections,
		Mbps:        avg,
	})
	return nil
}

func runOnce(tester *speedtest.Tester, kind, host string, bytes int64, connections int) (float64, error) {
	if connections > 1 {
		if kind == "upload" {
			return tester.UploadMulti(host, bytes, connections)
		}
		return tester.DownloadMulti(host, bytes, connections)
	}
	conn, err := tester.Connect(host)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	if kind == "upload" {
		return tester.Upload(conn, bytes)
	}
	return tester.Download(conn, bytes)
}
