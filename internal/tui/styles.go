// Package tui provides Bubble Tea views for detection, history and the
// disease knowledge base.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/cropguard/internal/detect"
	"github.com/fakeyudi/cropguard/internal/render"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("28")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("28")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("114"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("71")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("107"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("124")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))

	toneStyles = map[render.Tone]lipgloss.Style{
		render.Good: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("28")).Padding(0, 1),
		render.Warn: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("178")).Padding(0, 1),
		render.Bad:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("124")).Padding(0, 1),
	}
)

func chip(t render.Tone, label string) string {
	return toneStyles[t].Render(label)
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func bullet(text string) string {
	return bulletStyle.Render("  •") + "  " + text + "\n"
}

func numberedList(items []string) string {
	var sb strings.Builder
	for i, it := range items {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %3d.", i+1)) + "  " + it + "\n")
	}
	return sb.String()
}

func row(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
}

func banner(err error, width int) string {
	msg := render.Banner(err)
	if errors.Is(err, detect.ErrInvalidImage) {
		msg = "Error: " + detect.InvalidImageMessage
	}
	return errorStyle.Width(width).Render(msg)
}

func titleBar(title string, width int) string {
	return titleStyle.Width(width).Render("  cropguard  " + title)
}

func statusBar(hint, right string, width int) string {
	pad := width - lipgloss.Width(hint) - lipgloss.Width(right) - 2
	if pad < 1 {
		pad = 1
	}
	return statusBarStyle.Width(width).Render(hint + strings.Repeat(" ", pad) + right)
}

func wrap(s string, width int) string {
	if width <= 4 {
		return s
	}
	return lipgloss.NewStyle().Width(width-4).PaddingLeft(2).Render(s)
}
