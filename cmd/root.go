package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/velohq/velo/internal/catalog"
	"github.com/velohq/velo/internal/config"
	"github.com/velohq/velo/internal/history"
	"github.com/velohq/velo/internal/output"
	"github.com/velohq/velo/internal/speedtest"
	"github.com/velohq/velo/internal/utils"
)

var (
	debug      bool
	logFile    string
	configPath string
	hostFlag   string
	serverID   string
	allServers bool
	noSave     bool

	cfg *config.Config
)

var VeloVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "velo",
	Short:   "Velo measures network throughput and latency against bandwidth-test servers",
	Version: VeloVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.InitLogger(debug, logFile); err != nil {
			return fmt.Errorf("error opening log file: %v", err)
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "Also append logs to this file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&hostFlag, "host", "n", "", "Server host:port to test against")
	rootCmd.PersistentFlags().StringVar(&serverID, "id", "", "Catalog id of the server to test against")
	rootCmd.PersistentFlags().BoolVarP(&allServers, "all", "a", false, "Use the full server catalog instead of nearby servers")
	rootCmd.PersistentFlags().BoolVar(&noSave, "no-save", false, "Do not record the result in history")
	rootCmd.AddCommand(newListCmd(), newPingCmd(), newUploadCmd(), newDownloadCmd(), newBatchCmd(), newHistoryCmd())
}

func newTester(limit int, extra ...speedtest.Option) *speedtest.Tester {
	opts := []speedtest.Option{
		speedtest.WithLogger(utils.GetLogger("speedtest")),
		speedtest.WithDialTimeout(cfg.Timeout),
	}
	if limit > 0 {
		opts = append(opts, speedtest.WithRateLimit(limit))
	}
	opts = append(opts, extra...)
	return speedtest.New(opts...)
}

// fetchServers pulls the catalog honoring the --all flag.
func fetchServers() ([]catalog.Server, error) {
	client := catalog.NewClient()
	if allServers {
		return client.All()
	}
	return client.Near()
}

// resolveHost picks the endpoint: explicit --host wins, then --id lookup,
// then best-server selection by ping.
func resolveHost(t *speedtest.Tester) (string, error) {
	log := utils.GetLogger("cmd")
	if hostFlag != "" {
		log.Info().Str("host", hostFlag).Msg("Using server from host flag")
		return hostFlag, nil
	}
	servers, err := fetchServers()
	if err != nil {
		return "", err
	}
	if serverID != "" {
		s, err := catalog.ByID(servers, serverID)
		if err != nil {
			return "", err
		}
		log.Info().Str("sponsor", s.Sponsor).Str("id", serverID).Msg("Selected server by id")
		return s.Host, nil
	}
	best, err := catalog.Best(t, servers, utils.GetLogger("catalog"))
	if err != nil {
		return "", err
	}
	return best.Host, nil
}

// saveResult appends a run to the history database unless --no-save is set.
func saveResult(r history.Result) {
	if noSave {
		return
	}
	log := utils.GetLogger("history")
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Warn().Err(err).Msg("Could not open history store")
		return
	}
	defer store.Close()
	r.Timestamp = time.Now()
	if err := store.Save(r); err != nil {
		log.Warn().Err(err).Msg("Could not save result")
	}
}
