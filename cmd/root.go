package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/config"
	"github.com/fakeyudi/cropguard/internal/render"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var (
	formatFlag string
	apiURLFlag string
	verbose    bool
)

// envFile is the dotenv file read on every run.
var envFile = ".env"

var rootCmd = &cobra.Command{
	Use:          "cropguard",
	Short:        "Detect crop diseases from leaf images",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr(), verbose)

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		if err := config.ApplyEnv(&cfg, envFile); err != nil {
			return err
		}
		if apiURLFlag != "" {
			cfg.APIURL = apiURLFlag
		}
		if formatFlag != "" {
			cfg.DefaultFormat = formatFlag
		}
		if _, err := render.For(cfg.DefaultFormat); err != nil {
			return err
		}

		log.Debug().
			Str("api_url", cfg.APIURL).
			Str("format", cfg.DefaultFormat).
			Int("history_limit", cfg.HistoryLimit).
			Msg("config loaded")
		return nil
	},
}

func setupLogging(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "", "output format: markdown or json (default from config)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "backend base URL (overrides config and "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and session changes")
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}
