package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/curlhub/pkg/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit, and build time of curlctl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if done, err := printJSON(cmd.OutOrStdout(), config.GetBuildInfo()); done || err != nil {
			return err
		}
		fmt.Println(config.VersionString())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
