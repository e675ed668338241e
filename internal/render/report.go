package render

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/cropguard/internal/api"
)

// Report is the result of classifying every image in a directory.
type Report struct {
	Dir         string        `json:"dir"`
	GeneratedAt time.Time     `json:"generated_at"`
	Entries     []ReportEntry `json:"entries"`
}

// ReportEntry is one scanned file. Exactly one of Result and Error is set.
type ReportEntry struct {
	File   string          `json:"file"`
	Result *api.Prediction `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Counts tallies the entries by outcome.
func (r *Report) Counts() (healthy, diseased, failed int) {
	for _, e := range r.Entries {
		switch {
		case e.Result == nil:
			failed++
		case e.Result.Healthy():
			healthy++
		default:
			diseased++
		}
	}
	return healthy, diseased, failed
}

const (
	reportSentinel = "<!-- cropguard-report-version: 1 -->"
	reportPrefix   = "<!-- cropguard-data: "
	reportSuffix   = " -->"
)

// ErrNotReport is returned when parsing a file that is not a saved report.
var ErrNotReport = errors.New("not a valid cropguard report")

// Report renders a scan as Markdown with the full report embedded as a
// base64 JSON payload, so the file can be parsed back losslessly.
func (r *MarkdownRenderer) Report(rep *Report) ([]byte, error) {
	jsonBytes, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder
	sb.WriteString(reportSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", reportPrefix, encoded, reportSuffix)

	fmt.Fprintf(&sb, "# Scan — %s — %s\n\n", rep.Dir, rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	healthy, diseased, failed := rep.Counts()
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Images: %d\n", len(rep.Entries))
	fmt.Fprintf(&sb, "- Healthy: %d\n", healthy)
	fmt.Fprintf(&sb, "- Diseased: %d\n", diseased)
	fmt.Fprintf(&sb, "- Failed: %d\n\n", failed)

	sb.WriteString("## Results\n\n")
	if len(rep.Entries) == 0 {
		sb.WriteString("_No images found._\n")
		return []byte(sb.String()), nil
	}
	sb.WriteString("| File | Crop | Disease | Status | Confidence |\n")
	sb.WriteString("|------|------|---------|--------|------------|\n")
	for _, e := range rep.Entries {
		if e.Result == nil {
			fmt.Fprintf(&sb, "| %s | | | failed: %s | |\n", cell(e.File), cell(e.Error))
			continue
		}
		p := e.Result
		fmt.Fprintf(&sb, "| %s | %s | %s | %s %s | %s |\n",
			cell(e.File), cell(p.CropName), cell(p.DiseaseName),
			cell(p.Status), mark(StatusTone(p.Status)), FormatConfidence(p.Confidence))
	}
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// ParseReport reads a report written by either renderer.
func ParseReport(data []byte) (*Report, error) {
	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, "{") {
		var rep Report
		if err := json.Unmarshal(data, &rep); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotReport, err)
		}
		return &rep, nil
	}

	if !strings.Contains(content, reportSentinel) {
		return nil, fmt.Errorf("%w: missing version sentinel", ErrNotReport)
	}
	start := strings.Index(content, reportPrefix)
	if start == -1 {
		return nil, fmt.Errorf("%w: missing data payload", ErrNotReport)
	}
	start += len(reportPrefix)
	end := strings.Index(content[start:], reportSuffix)
	if end == -1 {
		return nil, fmt.Errorf("%w: malformed data payload", ErrNotReport)
	}

	jsonBytes, err := base64.StdEncoding.DecodeString(content[start : start+end])
	if err != nil {
		return nil, fmt.Errorf("%w: corrupted payload: %v", ErrNotReport, err)
	}
	var rep Report
	if err := json.Unmarshal(jsonBytes, &rep); err != nil {
		return nil, fmt.Errorf("%w: embedded JSON: %v", ErrNotReport, err)
	}
	return &rep, nil
}
