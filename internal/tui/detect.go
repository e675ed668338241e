package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/detect"
	"github.com/fakeyudi/cropguard/internal/render"
)

type selectMsg struct{ path string }

type detectResultMsg struct{ out detect.Outcome }

// DetectModel lets the user pick an image path and shows the classification.
type DetectModel struct {
	ctx     context.Context
	flow    *detect.Flow
	initial string

	input   textinput.Model
	spinner spinner.Model
	result  viewport.Model

	width  int
	height int
	ready  bool

	loading    bool
	gen        uint64
	preview    *detect.Preview
	prediction *api.Prediction
	err        error
}

// NewDetect creates a detect view. A non-empty path is analysed on start.
func NewDetect(ctx context.Context, flow *detect.Flow, path string) DetectModel {
	ti := textinput.New()
	ti.Placeholder = "path/to/leaf.jpg"
	ti.Prompt = "Image: "
	ti.SetValue(path)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = bulletStyle

	return DetectModel{
		ctx:     ctx,
		flow:    flow,
		initial: path,
		input:   ti,
		spinner: sp,
		result:  viewport.New(0, 0),
	}
}

// Prediction is the result currently on screen, if any.
func (m DetectModel) Prediction() *api.Prediction { return m.prediction }

// Loading reports whether a request for the current selection is in flight.
func (m DetectModel) Loading() bool { return m.loading }

// Err is the error currently shown in the banner.
func (m DetectModel) Err() error { return m.err }

func (m DetectModel) Init() tea.Cmd {
	if m.initial != "" {
		path := m.initial
		return tea.Batch(textinput.Blink, func() tea.Msg { return selectMsg{path: path} })
	}
	return textinput.Blink
}

func (m DetectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.selectPath(strings.TrimSpace(m.input.Value()))
		case "ctrl+r":
			m.flow.Reset()
			m.loading = false
			m.preview = nil
			m.prediction = nil
			m.err = nil
			m.input.SetValue("")
			m.result.SetContent("")
			return m, nil
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.result, cmd = m.result.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case selectMsg:
		return m.selectPath(msg.path)

	case detectResultMsg:
		out := msg.out
		if out.Stale || out.Generation != m.gen {
			return m, nil
		}
		m.loading = false
		if out.Err != nil {
			m.err = out.Err
			return m, nil
		}
		m.prediction = out.Result
		m.result.SetContent(renderPrediction(out.Result, m.width))
		m.result.GotoTop()
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
		m.input.Width = msg.Width - len(m.input.Prompt) - 4
		m.result.Width = msg.Width
		m.result.Height = max(msg.Height-6, 1)
		if m.prediction != nil {
			m.result.SetContent(renderPrediction(m.prediction, m.width))
		}
		return m, nil
	}
	return m, nil
}

// selectPath validates path and, when it is an image, starts a request.
// A rejected file leaves the current view as it was apart from the banner.
func (m DetectModel) selectPath(path string) (tea.Model, tea.Cmd) {
	if path == "" {
		return m, nil
	}
	sel, err := m.flow.Select(m.ctx, path)
	if err != nil {
		m.err = err
		return m, nil
	}
	preview := sel.Preview()
	m.gen = sel.Generation()
	m.loading = true
	m.preview = &preview
	m.prediction = nil
	m.err = nil
	m.result.SetContent("")

	flow := m.flow
	submit := func() tea.Msg { return detectResultMsg{out: flow.Submit(sel)} }
	return m, tea.Batch(m.spinner.Tick, submit)
}

func (m DetectModel) View() string {
	if !m.ready {
		return "Loading…"
	}

	var sb strings.Builder
	sb.WriteString(titleBar("detect", m.width) + "\n")
	sb.WriteString("  " + m.input.View() + "\n")

	if m.preview != nil {
		p := m.preview
		info := fmt.Sprintf("%s · %s · %s", p.Name, p.ContentType, humanSize(p.Size))
		if p.Width > 0 {
			info += fmt.Sprintf(" · %dx%d", p.Width, p.Height)
		}
		sb.WriteString(dimStyle.Render("  "+info) + "\n")
	} else {
		sb.WriteString("\n")
	}

	switch {
	case m.err != nil:
		sb.WriteString(banner(m.err, m.width) + "\n")
	case m.loading:
		sb.WriteString("  " + m.spinner.View() + " Analyzing image…\n")
	default:
		sb.WriteString("\n")
	}

	if m.prediction != nil {
		sb.WriteString(m.result.View() + "\n")
	}

	pct := ""
	if m.prediction != nil {
		pct = fmt.Sprintf("%3.0f%%", m.result.ScrollPercent()*100)
	}
	sb.WriteString(statusBar("  enter analyze  ctrl+r reset  ↑/↓ scroll  esc quit", pct, m.width))
	return sb.String()
}

func renderPrediction(p *api.Prediction, width int) string {
	var sb strings.Builder

	sb.WriteString(heading("Analysis Complete"))
	sb.WriteString("  " + chip(render.StatusTone(p.Status), p.Status) + "\n\n")

	row(&sb, "Disease:", p.DiseaseName)
	row(&sb, "Crop:", p.CropName)
	row(&sb, "Confidence:", chip(render.ConfidenceTone(p.Confidence), render.FormatConfidence(p.Confidence)))
	if p.Severity != "" {
		row(&sb, "Severity:", chip(render.SeverityTone(p.Severity), p.Severity))
	}
	if p.SpreadRisk != "" {
		row(&sb, "Spread Risk:", p.SpreadRisk)
	}

	if p.Description != "" {
		sb.WriteString(heading("Description"))
		sb.WriteString(wrap(p.Description, width) + "\n")
	}
	if len(p.Symptoms) > 0 {
		sb.WriteString(heading("Symptoms"))
		for _, s := range p.Symptoms {
			sb.WriteString(bullet(s))
		}
	}
	if len(p.OrganicTreatment) > 0 {
		sb.WriteString(heading("Organic Treatment"))
		sb.WriteString(numberedList(p.OrganicTreatment))
	}
	if len(p.ChemicalTreatment) > 0 {
		sb.WriteString(heading("Chemical Treatment"))
		sb.WriteString(numberedList(p.ChemicalTreatment))
	}
	if p.Dosage != "" {
		sb.WriteString(heading("Dosage per Acre"))
		sb.WriteString("  " + p.Dosage + "\n")
	}
	if len(p.Prevention) > 0 {
		sb.WriteString(heading("Prevention"))
		sb.WriteString(numberedList(p.Prevention))
	}
	return sb.String()
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
