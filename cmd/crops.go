package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
)

var cropsCmd = &cobra.Command{
	Use:   "crops",
	Short: "List supported crops",
	RunE: func(cmd *cobra.Command, args []string) error {
		crops, err := newClient(nil).Crops(cmd.Context())
		if err != nil {
			return errors.New(api.Message(err))
		}
		data, err := renderer().Crops(crops)
		if err != nil {
			return err
		}
		return output(cmd, data)
	},
}

func init() {
	rootCmd.AddCommand(cropsCmd)
}
