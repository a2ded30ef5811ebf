package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past matches",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		if d.token() == "" {
			d.logger.Info("exiting", zap.String("reason", "not logged in, there is no history"))
			return
		}

		history := d.history()
		if err := history.FetchMatches(ctx); err != nil {
			d.logger.Fatal("fetching match history", zap.Error(err))
		}

		d.print(history.Matches())
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
