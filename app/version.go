package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/version"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and commit",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", version.Version, version.Commit)
	},
}
