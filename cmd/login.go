package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the CropGuard backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := askString(&loginEmail, "Email:", false); err != nil {
			return err
		}
		if err := askString(&loginPassword, "Password:", true); err != nil {
			return err
		}

		m, _, err := newManager()
		if err != nil {
			return err
		}
		s, err := m.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return fmt.Errorf("login failed: %s", api.Message(err))
		}
		cmd.Printf("Signed in as %s\n", s.DisplayName())
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}
