package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/gateway"
	"github.com/spigell/talentmatch/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local gateway with the match route",
	Run: func(_ *cobra.Command, _ []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		cfg := config.Gateway
		if cfg == nil {
			cfg = &gateway.Config{}
		}
		if cfg.APIURL == "" {
			cfg.APIURL = config.APIURL
		}
		if cfg.MatcherURL == "" {
			cfg.MatcherURL = config.APIURL
		}

		srv, err := gateway.New(cfg, logger)
		if err != nil {
			logger.Fatal("creating the gateway", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("starting the gateway", zap.String("version", version), zap.String("listen", srv.Addr()))

		if err := srv.Run(ctx); err != nil {
			logger.Fatal("gateway stopped", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", gateway.DefaultListen, "address to listen on")
	viper.BindPFlag("gateway.listen", serveCmd.Flags().Lookup("listen"))
}
