package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/session"
)

var (
	registerName     string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := askString(&registerName, "Name:", false); err != nil {
			return err
		}
		if err := askString(&registerEmail, "Email:", false); err != nil {
			return err
		}

		confirm := registerPassword
		if registerPassword == "" {
			if err := askString(&registerPassword, "Password:", true); err != nil {
				return err
			}
			if err := askString(&confirm, "Confirm password:", true); err != nil {
				return err
			}
		}

		m, _, err := newManager()
		if err != nil {
			return err
		}
		s, err := m.Register(cmd.Context(), session.Registration{
			Name:            registerName,
			Email:           registerEmail,
			Password:        registerPassword,
			ConfirmPassword: confirm,
		})
		if err != nil {
			var verr *session.ValidationError
			if errors.As(err, &verr) {
				return verr
			}
			return fmt.Errorf("registration failed: %s", api.Message(err))
		}
		cmd.Printf("Account created. Signed in as %s\n", s.DisplayName())
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password (prompted with confirmation when omitted)")
	rootCmd.AddCommand(registerCmd)
}
