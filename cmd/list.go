package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available bandwidth-test servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			servers, err := fetchServers()
			if err != nil {
				return err
			}
			for _, s := range servers {
				if verbose {
					fmt.Println(s.Verbose())
				} else {
					fmt.Println(s)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show coordinates, country and host")
	return cmd
}
