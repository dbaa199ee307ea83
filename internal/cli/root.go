package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/wardroberec/internal/config"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/logger"
	"github.com/pratik-mahalle/wardroberec/internal/session"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// Version is stamped at build time
var Version = "dev"

var (
	cfgFile      string
	outputFormat string
	noColor      bool
	serverURL    string
	apiClient    *client.Client
	appConfig    *config.Config
	log          = logger.Nop()
	// store is the session for this invocation
	store *session.Store
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wardrobe",
		Short: "Wardrobe CLI - outfit recommendations from your own clothes",
		Long: `Wardrobe CLI talks to a wardrobe recommendation server. Photograph
and upload clothing, browse and prune your wardrobe, and ask for an outfit
for an occasion, then rate it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// config and options never talk to the server
			if cmd.Name() == "options" || cmd.Name() == "help" ||
				(cmd.Parent() != nil && cmd.Parent().Name() == "config") {
				return nil
			}
			return initClient()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			sentry.Flush(2 * time.Second)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.wardrobe/config.yaml)")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	_ = viper.BindPFlag("output", cmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", cmd.PersistentFlags().Lookup("server"))

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newOptionsCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newRecommendCmd())

	return cmd
}

// Execute runs the CLI. Cancelling ctx aborts any request in flight.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".wardrobe"), nil
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		_ = os.MkdirAll(dir, 0700)
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("WARDROBE")
	viper.AutomaticEnv()

	// server_url has no default so WARDROBE_SERVER from the environment still applies
	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func initClient() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// config file and flags win over the environment
	if url := viper.GetString("server_url"); url != "" {
		cfg.Backend.BaseURL = url
	}
	if serverURL != "" {
		cfg.Backend.BaseURL = serverURL
	}
	if level := viper.GetString("log_level"); level != "" {
		cfg.Logging.Level = level
	}
	if userID := viper.GetString("user_id"); userID != "" {
		cfg.Backend.UserID = userID
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log = logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     "wardrobe-cli@" + Version,
			SampleRate:  cfg.Sentry.SampleRate,
		})
		if err != nil {
			log.WithError(err).Warnf("sentry disabled")
		}
	}

	appConfig = cfg
	apiClient = client.NewClient(cfg.ClientConfig(log))
	store = session.NewStore(log)
	log.Debugf("using server %s", apiClient.BaseURL())
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}
