package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/talentmatch/internal/filtering"
	"github.com/spigell/talentmatch/internal/gateway"
	"github.com/spigell/talentmatch/internal/session"
)

const (
	app       = "talentmatch"
	envPrefix = "TALENTMATCH"
)

type Config struct {
	APIURL string `mapstructure:"api-url"`
	// MatchURL is where /api/match is served, normally the local gateway.
	MatchURL  string            `mapstructure:"match-url"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	UserAgent string            `mapstructure:"user-agent"`
	Output    string            `mapstructure:"output"`
	Session   *session.Config   `mapstructure:"session"`
	Gateway   *gateway.Config   `mapstructure:"gateway"`
	Scrape    *filtering.Config `mapstructure:"scrape"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentmatch is a cli for the job and talent matching service",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("output", "o", "json", "output format of results: json or yaml")
	rootCmd.PersistentFlags().String("api-url", "", "base url of the API backend")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))

	setDefaults()
}

// setDefaults registers every key so that environment variables can override
// keys missing from the config file.
func setDefaults() {
	viper.SetDefault("api-url", "http://localhost:5000")
	viper.SetDefault("match-url", "http://"+gateway.DefaultListen)
	viper.SetDefault("timeout", time.Duration(0))
	viper.SetDefault("user-agent", "")
	viper.SetDefault("output", "json")
	viper.SetDefault("session.backend", session.BackendFile)
	viper.SetDefault("session.file", "")
	viper.SetDefault("session.redis-url", "")
	viper.SetDefault("session.redis-key", "")
	viper.SetDefault("gateway.listen", gateway.DefaultListen)
	viper.SetDefault("gateway.matcher-url", "")
	viper.SetDefault("gateway.api-url", "")
	viper.SetDefault("gateway.shutdown-timeout", gateway.DefaultShutdownTimeout)
	viper.SetDefault("scrape.exclude-companies", []string{})
	viper.SetDefault("scrape.keep-failed", false)
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config the file is optional.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
