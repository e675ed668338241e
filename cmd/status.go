package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health and whether you are signed in",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, client, err := newManager()
		if err != nil {
			return err
		}

		st, err := client.Status(cmd.Context())
		if err != nil {
			if errors.Is(err, api.ErrNetwork) {
				return errors.New("backend unreachable at " + client.BaseURL())
			}
			return errors.New(api.Message(err))
		}
		data, err := renderer().Status(st)
		if err != nil {
			return err
		}
		if err := output(cmd, data); err != nil {
			return err
		}

		if !jsonOutput() {
			if s, ok := m.Current(); ok {
				cmd.PrintErrf("Signed in as %s\n", s.DisplayName())
			} else {
				cmd.PrintErrln("Not signed in")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
