package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/tui"
)

var diseasePlain bool

var diseaseCmd = &cobra.Command{
	Use:   "disease <class-key>",
	Short: "Show symptoms, treatment and prevention for one disease",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newClient(nil).Disease(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, api.ErrNotFound) {
				return fmt.Errorf("disease %q not found (see 'cropguard diseases')", args[0])
			}
			return errors.New(api.Message(err))
		}

		if interactive(cmd, diseasePlain) {
			return tui.RunDisease(d)
		}
		data, err := renderer().Disease(d)
		if err != nil {
			return err
		}
		return output(cmd, data)
	},
}

func init() {
	diseaseCmd.Flags().BoolVar(&diseasePlain, "plain", false, "print the entry instead of opening the interactive view")
	rootCmd.AddCommand(diseaseCmd)
}
