package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Actual version can be specified in build command.
var version = "unknown"

type versionInfo struct {
	App     string `json:"app" yaml:"app"`
	Version string `json:"version" yaml:"version"`
	Go      string `json:"go" yaml:"go"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeOutput(cmd.OutOrStdout(), viper.GetString("output"), versionInfo{
			App:     app,
			Version: version,
			Go:      runtime.Version(),
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
