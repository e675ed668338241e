package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/render"
)

var viewCmd = &cobra.Command{
	Use:   "view <report>",
	Short: "Show a report saved by 'cropguard scan --out'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}

		rep, err := render.ParseReport(data)
		if err != nil {
			return err
		}

		out, err := renderer().Report(rep)
		if err != nil {
			return err
		}
		return output(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
