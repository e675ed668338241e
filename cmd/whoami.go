package cmd

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := newManager()
		if err != nil {
			return err
		}
		s, err := requireSession(m)
		if err != nil {
			return err
		}

		claims, err := session.ParseClaims(s.Token)
		if err != nil {
			log.Debug().Err(err).Msg("token is not a readable JWT")
		}

		if jsonOutput() {
			out := struct {
				User      api.User   `json:"user"`
				ExpiresAt *time.Time `json:"expires_at,omitempty"`
				Expired   bool       `json:"expired"`
			}{User: s.User, Expired: claims.Expired(time.Now())}
			if !claims.ExpiresAt.IsZero() {
				out.ExpiresAt = &claims.ExpiresAt
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		}

		cmd.Printf("Name:    %s\n", s.User.Name)
		cmd.Printf("Email:   %s\n", s.User.Email)
		if s.User.ID != "" {
			cmd.Printf("ID:      %s\n", s.User.ID)
		}
		if s.User.Role != "" {
			cmd.Printf("Role:    %s\n", s.User.Role)
		}
		if !claims.ExpiresAt.IsZero() {
			note := ""
			if claims.Expired(time.Now()) {
				note = " (expired; run 'cropguard login')"
			}
			cmd.Printf("Expires: %s%s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04 MST"), note)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
