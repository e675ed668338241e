package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/render"
	"github.com/fakeyudi/cropguard/internal/session"
)

// errNotSignedIn is what protected commands return without a session.
var errNotSignedIn = errors.New("not signed in — run 'cropguard login'")

// newStore opens the session store in the XDG data directory.
func newStore() (session.Store, error) {
	return session.NewStore()
}

// newClient builds an API client that reads its bearer token from creds.
func newClient(creds api.Credentials, opts ...api.Option) *api.Client {
	base := []api.Option{
		api.WithTimeout(cfg.Timeout()),
		api.WithPredictTimeout(cfg.PredictTimeout()),
	}
	if creds != nil {
		base = append(base, api.WithCredentials(creds))
	}
	return api.NewClient(cfg.APIURL, append(base, opts...)...)
}

// newManager wires the store, client and session manager together.
func newManager(opts ...api.Option) (*session.Manager, *api.Client, error) {
	store, err := newStore()
	if err != nil {
		return nil, nil, err
	}
	client := newClient(store, opts...)
	return session.NewManager(client, store), client, nil
}

// requireSession returns the current session or errNotSignedIn.
func requireSession(m *session.Manager) (*session.Session, error) {
	s, ok := m.Current()
	if !ok {
		return nil, errNotSignedIn
	}
	return s, nil
}

func renderer() render.Renderer {
	r, err := render.For(cfg.DefaultFormat)
	if err != nil {
		return &render.MarkdownRenderer{}
	}
	return r
}

func jsonOutput() bool {
	return cfg.DefaultFormat == render.FormatJSON
}

// isTTY reports whether v is an interactive terminal.
func isTTY(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// interactive reports whether a Bubble Tea view can take over the terminal.
func interactive(cmd *cobra.Command, plain bool) bool {
	return !plain && !jsonOutput() && isTTY(cmd.InOrStdin()) && isTTY(cmd.OutOrStdout())
}

// output writes a rendered view, styling Markdown when stdout is a terminal.
func output(cmd *cobra.Command, data []byte) error {
	out := cmd.OutOrStdout()
	if !jsonOutput() && isTTY(out) {
		width := 80
		if f, ok := out.(*os.File); ok {
			if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
				width = w
			}
		}
		styled, err := render.Terminal(data, width)
		if err == nil {
			_, err = io.WriteString(out, styled)
			return err
		}
	}
	_, err := out.Write(data)
	return err
}
