package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/paging"
	"github.com/fakeyudi/cropguard/internal/render"
)

// HistorySource fetches one page of the signed-in user's predictions.
type HistorySource interface {
	History(ctx context.Context, page, limit int) (*api.HistoryPage, error)
}

type historyMsg struct {
	seq  int
	page *api.HistoryPage
	err  error
}

// HistoryModel lists past predictions with previous/next paging.
type HistoryModel struct {
	ctx   context.Context
	src   HistorySource
	pager paging.Pager

	spinner spinner.Model
	list    viewport.Model

	width  int
	height int
	ready  bool

	seq       int
	loading   bool
	entries   []api.HistoryEntry
	cursor    int
	err       error
	signedOut bool
}

// NewHistory creates a history view starting at pager's page.
func NewHistory(ctx context.Context, src HistorySource, pager paging.Pager) HistoryModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = bulletStyle
	return HistoryModel{
		ctx:     ctx,
		src:     src,
		pager:   pager,
		spinner: sp,
		list:    viewport.New(0, 0),
		loading: true,
		seq:     1,
	}
}

// Pager is the current page position.
func (m HistoryModel) Pager() paging.Pager { return m.pager }

// Entries are the predictions on the current page.
func (m HistoryModel) Entries() []api.HistoryEntry { return m.entries }

// Loading reports whether a page request is in flight.
func (m HistoryModel) Loading() bool { return m.loading }

// SignedOut reports whether the server rejected the session.
func (m HistoryModel) SignedOut() bool { return m.signedOut }

func (m HistoryModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m HistoryModel) fetch() tea.Cmd {
	ctx, src, seq := m.ctx, m.src, m.seq
	page, limit := m.pager.Page, m.pager.Limit
	return func() tea.Msg {
		p, err := src.History(ctx, page, limit)
		return historyMsg{seq: seq, page: p, err: err}
	}
}

// goTo moves to p and starts fetching it. Earlier in-flight pages are
// ignored when they arrive.
func (m HistoryModel) goTo(p paging.Pager) (tea.Model, tea.Cmd) {
	m.pager = p
	m.seq++
	m.loading = true
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.fetch())
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "n", "right", "l":
			if !m.loading && m.pager.HasNext() {
				return m.goTo(m.pager.Next())
			}
			return m, nil
		case "p", "left", "h":
			if !m.loading && m.pager.HasPrev() {
				return m.goTo(m.pager.Prev())
			}
			return m, nil
		case "r":
			return m.goTo(m.pager)
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case historyMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			// The pager already names the requested page; rows from the
			// previous page must not be shown under it.
			m.err = msg.err
			m.signedOut = errors.Is(msg.err, api.ErrUnauthorized)
			m.entries = nil
			m.cursor = 0
			m.refresh()
			return m, nil
		}
		m.pager = m.pager.WithTotal(msg.page.Total)
		m.entries = msg.page.Predictions
		m.cursor = 0
		m.refresh()
		m.list.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.Width = msg.Width
		// title(1) + summary(1) + banner(1) + controls(1) + statusBar(1)
		m.list.Height = max(msg.Height-5, 1)
		m.refresh()
		return m, nil
	}
	return m, nil
}

func (m *HistoryModel) refresh() {
	m.list.SetContent(m.renderEntries())
}

func (m HistoryModel) renderEntries() string {
	if len(m.entries) == 0 {
		if m.err != nil {
			return ""
		}
		return heading(render.EmptyHistory) + dimStyle.Render("  Run `cropguard detect <image>` to get started") + "\n"
	}
	var sb strings.Builder
	for i, e := range m.entries {
		line := fmt.Sprintf("  %-24s %s", e.DiseaseName, dimStyle.Render(e.CropName+" • "+render.FormatTime(e.CreatedAt)))
		if i == m.cursor {
			line = selectedRowStyle.Width(max(m.width-2, 1)).Render(line)
		}
		sb.WriteString(line + "\n")

		chips := "    " + chip(render.StatusTone(e.Status), e.Status) + " " +
			chip(render.ConfidenceTone(e.Confidence), render.FormatConfidence(e.Confidence))
		if e.Severity != "" && e.Severity != "None" {
			chips += " " + chip(render.SeverityTone(e.Severity), e.Severity)
		}
		sb.WriteString(chips + "\n\n")
	}
	return sb.String()
}

func (m HistoryModel) View() string {
	if !m.ready {
		return "Loading…"
	}

	var sb strings.Builder
	sb.WriteString(titleBar("history", m.width) + "\n")
	sb.WriteString(timeStyle.Render(fmt.Sprintf("  %d total", m.pager.Total)) + "\n")

	switch {
	case m.err != nil && m.signedOut:
		sb.WriteString(banner(errors.New("session expired — run 'cropguard login'"), m.width) + "\n")
	case m.err != nil:
		sb.WriteString(banner(m.err, m.width) + "\n")
	default:
		sb.WriteString("\n")
	}

	if m.loading {
		sb.WriteString("  " + m.spinner.View() + " Loading page " + fmt.Sprint(m.pager.Page) + "…\n")
	} else {
		sb.WriteString(m.list.View() + "\n")
	}

	controls := ""
	if m.pager.ShowControls() {
		prev, next := dimStyle.Render("← previous"), dimStyle.Render("next →")
		if m.pager.HasPrev() {
			prev = labelStyle.Render("← previous")
		}
		if m.pager.HasNext() {
			next = labelStyle.Render("next →")
		}
		controls = fmt.Sprintf("  %s   page %d of %d   %s", prev, m.pager.Page, m.pager.Pages(), next)
	}
	sb.WriteString(controls + "\n")
	sb.WriteString(statusBar("  ←/→ page  ↑/↓ select  r reload  q quit", "", m.width))
	return sb.String()
}
