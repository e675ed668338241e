package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/render"
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabOverview tabID = iota
	tabSymptoms
	tabTreatment
	tabPrevention
	tabCount
)

var tabNames = [tabCount]string{
	"Overview", "Symptoms", "Treatment", "Prevention",
}

// DiseaseModel is a tabbed, scrollable view of one knowledge base entry.
type DiseaseModel struct {
	disease   *api.Disease
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
}

// NewDisease creates a view for d.
func NewDisease(d *api.Disease) DiseaseModel {
	return DiseaseModel{disease: d}
}

func (m DiseaseModel) Init() tea.Cmd { return nil }

func (m DiseaseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1", "2", "3", "4":
			m.activeTab = tabID(msg.String()[0] - '1')
			return m, nil
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m DiseaseModel) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleBar(m.disease.DiseaseName+" · "+m.disease.Crop, m.width)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	bar := statusBar("  ←/→ tab  ↑/↓ scroll  1-4 jump  q quit", pct, m.width)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, bar)
}

func (m *DiseaseModel) initViewports() {
	// title(1) + tabRow(1) + statusBar(1)
	vpHeight := max(m.height-3, 1)
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *DiseaseModel) renderTab(t tabID) string {
	d := m.disease
	var sb strings.Builder
	switch t {
	case tabOverview:
		sb.WriteString(heading("Overview"))
		row(&sb, "Crop:", d.Crop)
		row(&sb, "Key:", d.ClassKey)
		if d.Severity != "" {
			row(&sb, "Severity:", chip(render.SeverityTone(d.Severity), d.Severity))
		}
		if d.SpreadRisk != "" {
			row(&sb, "Spread Risk:", d.SpreadRisk)
		}
		if d.Description != "" {
			sb.WriteString(heading("Description"))
			sb.WriteString(wrap(d.Description, m.width) + "\n")
		}
		if d.Cause != "" {
			sb.WriteString(heading("Cause"))
			sb.WriteString(wrap(d.Cause, m.width) + "\n")
		}
	case tabSymptoms:
		sb.WriteString(heading(fmt.Sprintf("Symptoms (%d)", len(d.Symptoms))))
		if len(d.Symptoms) == 0 {
			sb.WriteString(dimStyle.Render("  (none listed)") + "\n")
		}
		for _, s := range d.Symptoms {
			sb.WriteString(bullet(s))
		}
	case tabTreatment:
		sb.WriteString(heading("Organic Treatment"))
		if len(d.OrganicTreatment) == 0 {
			sb.WriteString(dimStyle.Render("  (none listed)") + "\n")
		}
		sb.WriteString(numberedList(d.OrganicTreatment))
		sb.WriteString(heading("Chemical Treatment"))
		if len(d.ChemicalTreatment) == 0 {
			sb.WriteString(dimStyle.Render("  (none listed)") + "\n")
		}
		sb.WriteString(numberedList(d.ChemicalTreatment))
		if d.Dosage != "" {
			sb.WriteString(heading("Dosage per Acre"))
			sb.WriteString(wrap(d.Dosage, m.width) + "\n")
		}
	case tabPrevention:
		sb.WriteString(heading(fmt.Sprintf("Prevention Tips (%d)", len(d.Prevention))))
		if len(d.Prevention) == 0 {
			sb.WriteString(dimStyle.Render("  (none listed)") + "\n")
		}
		sb.WriteString(numberedList(d.Prevention))
	}
	return sb.String()
}
