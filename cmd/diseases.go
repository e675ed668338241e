package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
)

var diseasesCrop string

var diseasesCmd = &cobra.Command{
	Use:   "diseases",
	Short: "List the diseases the model can recognise",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient(nil).Diseases(cmd.Context(), diseasesCrop)
		if err != nil {
			return errors.New(api.Message(err))
		}
		data, err := renderer().Diseases(list)
		if err != nil {
			return err
		}
		return output(cmd, data)
	},
}

func init() {
	diseasesCmd.Flags().StringVar(&diseasesCrop, "crop", "", "only list diseases of this crop")
	rootCmd.AddCommand(diseasesCmd)
}
