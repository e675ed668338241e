package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/detect"
	"github.com/fakeyudi/cropguard/internal/paging"
)

// RunDetect starts the detect view. It returns the last prediction shown.
func RunDetect(ctx context.Context, flow *detect.Flow, path string) (*api.Prediction, error) {
	p := tea.NewProgram(NewDetect(ctx, flow, path), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(DetectModel).Prediction(), nil
}

// RunHistory starts the history view. It reports whether the server
// rejected the session while browsing.
func RunHistory(ctx context.Context, src HistorySource, pager paging.Pager) (signedOut bool, err error) {
	p := tea.NewProgram(NewHistory(ctx, src, pager), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	return final.(HistoryModel).SignedOut(), nil
}

// RunDisease starts the disease view for d.
func RunDisease(d *api.Disease) error {
	p := tea.NewProgram(NewDisease(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
