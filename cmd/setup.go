package cmd

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/config"
	"github.com/fakeyudi/cropguard/internal/render"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure cropguard (re-run anytime to edit settings)",
	// A broken config file must not stop the wizard that rewrites it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr(), verbose)
		global, err := config.LoadGlobal()
		if err != nil {
			log.Warn().Err(err).Msg("ignoring existing config")
			d := config.Defaults()
			global = &d
		}
		cfg = config.Merge(global, nil)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd, cfg)
	},
}

// runSetup asks for each setting, using existing as the defaults, and
// writes the result to the global config file.
func runSetup(cmd *cobra.Command, existing config.Config) error {
	next := existing

	if err := askOneFunc(&survey.Input{
		Message: "Backend URL:",
		Default: existing.APIURL,
	}, &next.APIURL, survey.WithValidator(survey.Required)); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	if err := askOneFunc(&survey.Select{
		Message: "Default output format:",
		Options: []string{render.FormatMarkdown, render.FormatJSON},
		Default: existing.DefaultFormat,
	}, &next.DefaultFormat); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	limit := strconv.Itoa(existing.HistoryLimit)
	if err := askOneFunc(&survey.Input{
		Message: "Predictions per history page:",
		Default: limit,
	}, &limit, survey.WithValidator(validateLimit)); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	next.HistoryLimit, _ = strconv.Atoi(limit)

	path, err := config.SaveGlobal(next)
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Printf("  ✓ Config saved to %s\n", path)
	cmd.Println("  Run 'cropguard login' to sign in, or 'cropguard detect --demo <image>' to try it out.")
	return nil
}

func validateLimit(ans interface{}) error {
	s, _ := ans.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > api.MaxHistoryLimit {
		return fmt.Errorf("enter a number between 1 and %d", api.MaxHistoryLimit)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
