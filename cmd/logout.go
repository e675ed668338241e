package cmd

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := newManager()
		if err != nil {
			return err
		}
		_, signedIn := m.Current()
		if err := m.Logout(); err != nil {
			return err
		}
		if signedIn {
			cmd.Println("Signed out.")
		} else {
			cmd.Println("Not signed in.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
