package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/paging"
	"github.com/fakeyudi/cropguard/internal/tui"
)

var (
	historyPage  int
	historyLimit int
	historyPlain bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your past predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, client, err := newManager()
		if err != nil {
			return err
		}
		if _, err := requireSession(m); err != nil {
			return err
		}

		limit := historyLimit
		if limit <= 0 {
			limit = cfg.HistoryLimit
		}
		pager := paging.New(historyPage, limit)

		if interactive(cmd, historyPlain) {
			signedOut, err := tui.RunHistory(cmd.Context(), client, pager)
			if err != nil {
				return err
			}
			if signedOut {
				return errNotSignedIn
			}
			return nil
		}

		page, err := client.History(cmd.Context(), pager.Page, pager.Limit)
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return errNotSignedIn
			}
			return errors.New(api.Message(err))
		}
		data, err := renderer().History(page, pager.WithTotal(page.Total))
		if err != nil {
			return err
		}
		return output(cmd, data)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "page number, starting at 1")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "predictions per page (default from config)")
	historyCmd.Flags().BoolVar(&historyPlain, "plain", false, "print the page instead of opening the interactive view")
	rootCmd.AddCommand(historyCmd)
}
