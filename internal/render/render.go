// Package render turns API results into Markdown or JSON for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/paging"
)

// Output formats accepted by For.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// EmptyHistory is shown when the user has no predictions.
const EmptyHistory = "No predictions yet"

// Renderer serializes each kind of view.
type Renderer interface {
	Prediction(p *api.Prediction) ([]byte, error)
	History(page *api.HistoryPage, pg paging.Pager) ([]byte, error)
	Disease(d *api.Disease) ([]byte, error)
	Diseases(list *api.DiseaseList) ([]byte, error)
	Crops(crops []string) ([]byte, error)
	Status(s *api.Status) ([]byte, error)
	Report(r *Report) ([]byte, error)
}

// For returns the renderer for format.
func For(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", FormatMarkdown, "md":
		return &MarkdownRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want markdown or json)", format)
}

// Banner is the one-line error shown in place of a view.
func Banner(err error) string {
	return "Error: " + api.Message(err)
}

// FormatTime renders an API timestamp as "2 Jan 2006, 15:04". Unparsable
// values are returned unchanged.
func FormatTime(s string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2 Jan 2006, 15:04")
		}
	}
	return s
}

// FormatConfidence renders a percentage exactly as the server sent it.
func FormatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64) + "%"
}

// JSONRenderer renders views as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Prediction(p *api.Prediction) ([]byte, error) { return indent(p) }
func (r *JSONRenderer) Disease(d *api.Disease) ([]byte, error)       { return indent(d) }
func (r *JSONRenderer) Diseases(l *api.DiseaseList) ([]byte, error)  { return indent(l) }
func (r *JSONRenderer) Status(s *api.Status) ([]byte, error)         { return indent(s) }
func (r *JSONRenderer) Report(rep *Report) ([]byte, error)           { return indent(rep) }

func (r *JSONRenderer) Crops(crops []string) ([]byte, error) {
	if crops == nil {
		crops = []string{}
	}
	return indent(struct {
		Crops []string `json:"crops"`
	}{crops})
}

func (r *JSONRenderer) History(page *api.HistoryPage, pg paging.Pager) ([]byte, error) {
	preds := page.Predictions
	if preds == nil {
		preds = []api.HistoryEntry{}
	}
	return indent(struct {
		Total       int                `json:"total"`
		Page        int                `json:"page"`
		Limit       int                `json:"limit"`
		HasPrev     bool               `json:"has_prev"`
		HasNext     bool               `json:"has_next"`
		Predictions []api.HistoryEntry `json:"predictions"`
	}{pg.Total, pg.Page, pg.Limit, pg.HasPrev(), pg.HasNext(), preds})
}

func indent(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// MarkdownRenderer renders views as Markdown suitable for glamour.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Prediction(p *api.Prediction) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# Detection Results\n\n")
	fmt.Fprintf(&sb, "**%s** %s\n\n", p.Status, mark(StatusTone(p.Status)))

	fmt.Fprintf(&sb, "- Disease: %s\n", p.DiseaseName)
	fmt.Fprintf(&sb, "- Crop: %s\n", p.CropName)
	fmt.Fprintf(&sb, "- Confidence: %s %s\n", FormatConfidence(p.Confidence), mark(ConfidenceTone(p.Confidence)))
	if p.Severity != "" {
		fmt.Fprintf(&sb, "- Severity: %s %s\n", p.Severity, mark(SeverityTone(p.Severity)))
	}
	if p.SpreadRisk != "" {
		fmt.Fprintf(&sb, "- Spread risk: %s\n", p.SpreadRisk)
	}
	if p.CreatedAt != "" {
		fmt.Fprintf(&sb, "- Analysed: %s\n", FormatTime(p.CreatedAt))
	}
	sb.WriteString("\n")

	if p.Description != "" {
		sb.WriteString("## Description\n\n")
		sb.WriteString(p.Description)
		sb.WriteString("\n\n")
	}
	bullets(&sb, "Symptoms", p.Symptoms)
	numbered(&sb, "Organic Treatment", p.OrganicTreatment)
	numbered(&sb, "Chemical Treatment", p.ChemicalTreatment)
	if p.Dosage != "" {
		fmt.Fprintf(&sb, "## Dosage per Acre\n\n%s\n\n", p.Dosage)
	}
	numbered(&sb, "Prevention", p.Prevention)

	return []byte(sb.String()), nil
}

func (r *MarkdownRenderer) History(page *api.HistoryPage, pg paging.Pager) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Prediction History\n\n_%d total_\n\n", pg.Total)

	if len(page.Predictions) == 0 {
		fmt.Fprintf(&sb, "**%s**\n\nRun `cropguard detect <image>` to get started.\n", EmptyHistory)
		return []byte(sb.String()), nil
	}

	for _, e := range page.Predictions {
		fmt.Fprintf(&sb, "## %s\n\n", e.DiseaseName)
		fmt.Fprintf(&sb, "%s • %s\n\n", e.CropName, FormatTime(e.CreatedAt))
		fmt.Fprintf(&sb, "- Status: %s %s\n", e.Status, mark(StatusTone(e.Status)))
		fmt.Fprintf(&sb, "- Confidence: %s\n", FormatConfidence(e.Confidence))
		if e.Severity != "" && e.Severity != "None" {
			fmt.Fprintf(&sb, "- Severity: %s %s\n", e.Severity, mark(SeverityTone(e.Severity)))
		}
		sb.WriteString("\n")
	}

	if pg.ShowControls() {
		fmt.Fprintf(&sb, "Page %d of %d", pg.Page, pg.Pages())
		if pg.HasPrev() {
			fmt.Fprintf(&sb, " · previous: `--page %d`", pg.Prev().Page)
		}
		if pg.HasNext() {
			fmt.Fprintf(&sb, " · next: `--page %d`", pg.Next().Page)
		}
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

func (r *MarkdownRenderer) Disease(d *api.Disease) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", d.DiseaseName)
	fmt.Fprintf(&sb, "- Crop: %s\n", d.Crop)
	if d.Severity != "" {
		fmt.Fprintf(&sb, "- Severity: %s %s\n", d.Severity, mark(SeverityTone(d.Severity)))
	}
	if d.SpreadRisk != "" {
		fmt.Fprintf(&sb, "- Spread risk: %s\n", d.SpreadRisk)
	}
	sb.WriteString("\n")

	if d.Description != "" {
		sb.WriteString(d.Description)
		sb.WriteString("\n\n")
	}
	if d.Cause != "" {
		fmt.Fprintf(&sb, "## Cause\n\n%s\n\n", d.Cause)
	}
	bullets(&sb, "Symptoms", d.Symptoms)
	numbered(&sb, "Organic Treatment", d.OrganicTreatment)
	numbered(&sb, "Chemical Treatment", d.ChemicalTreatment)
	if d.Dosage != "" {
		fmt.Fprintf(&sb, "## Dosage per Acre\n\n%s\n\n", d.Dosage)
	}
	numbered(&sb, "Prevention Tips", d.Prevention)

	return []byte(sb.String()), nil
}

func (r *MarkdownRenderer) Diseases(l *api.DiseaseList) ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Diseases\n\n_%d total_\n\n", l.Total)
	if len(l.Diseases) == 0 {
		sb.WriteString("_No diseases found._\n")
		return []byte(sb.String()), nil
	}
	sb.WriteString("| Key | Disease | Crop | Severity |\n")
	sb.WriteString("|-----|---------|------|----------|\n")
	for _, d := range l.Diseases {
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", d.ClassKey, cell(d.DiseaseName), cell(d.Crop), cell(d.Severity))
	}
	return []byte(sb.String()), nil
}

func (r *MarkdownRenderer) Crops(crops []string) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString("# Supported Crops\n\n")
	if len(crops) == 0 {
		sb.WriteString("_No crops reported._\n")
		return []byte(sb.String()), nil
	}
	for _, c := range crops {
		fmt.Fprintf(&sb, "- %s\n", c)
	}
	return []byte(sb.String()), nil
}

func (r *MarkdownRenderer) Status(s *api.Status) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString("# Service Status\n\n")
	fmt.Fprintf(&sb, "- API: %s\n", s.API)
	fmt.Fprintf(&sb, "- Model: %s\n\n", s.Model)
	if len(s.Endpoints) > 0 {
		sb.WriteString("## Endpoints\n\n")
		for _, e := range s.Endpoints {
			fmt.Fprintf(&sb, "- `%s`\n", e)
		}
	}
	return []byte(sb.String()), nil
}

func mark(t Tone) string {
	switch t {
	case Good:
		return "✓"
	case Warn:
		return "⚠"
	default:
		return "✗"
	}
}

func bullets(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
	sb.WriteString("\n")
}

func numbered(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	for i, it := range items {
		fmt.Fprintf(sb, "%d. %s\n", i+1, it)
	}
	sb.WriteString("\n")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
