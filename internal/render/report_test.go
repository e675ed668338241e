package render_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/render"
)

// generateReport produces an arbitrary scan report with at least one entry.
func generateReport(t *rapid.T) *render.Report {
	sec := rapid.Int64Range(1_000_000_000, 1_900_000_000).Draw(t, "generated_sec")
	n := rapid.IntRange(1, 6).Draw(t, "num_entries")
	entries := make([]render.ReportEntry, n)
	for i := range entries {
		e := render.ReportEntry{File: rapid.StringN(1, 40, -1).Draw(t, "file")}
		if rapid.Bool().Draw(t, "failed") {
			e.Error = rapid.StringN(1, 60, -1).Draw(t, "error")
		} else {
			e.Result = &api.Prediction{
				CropName:    rapid.StringN(1, 20, -1).Draw(t, "crop"),
				DiseaseName: rapid.StringN(1, 30, -1).Draw(t, "disease"),
				Confidence:  float64(rapid.IntRange(0, 100).Draw(t, "confidence")),
				Status:      rapid.SampledFrom([]string{api.StatusHealthy, api.StatusDiseased, api.StatusUncertain}).Draw(t, "status"),
				Severity:    rapid.SampledFrom([]string{"None", "Low", "Medium", "High"}).Draw(t, "severity"),
			}
		}
		entries[i] = e
	}
	return &render.Report{
		Dir:         rapid.StringN(1, 50, -1).Draw(t, "dir"),
		GeneratedAt: time.Unix(sec, 0).UTC(),
		Entries:     entries,
	}
}

func assertReportEqual(t *rapid.T, got, want *render.Report) {
	if got.Dir != want.Dir || !got.GeneratedAt.Equal(want.GeneratedAt) {
		t.Fatalf("header mismatch: got %q %v, want %q %v", got.Dir, got.GeneratedAt, want.Dir, want.GeneratedAt)
	}
	if len(got.Entries) != len(want.Entries) {
		t.Fatalf("Entries length mismatch: got %d, want %d", len(got.Entries), len(want.Entries))
	}
	for i := range want.Entries {
		g, w := got.Entries[i], want.Entries[i]
		if g.File != w.File || g.Error != w.Error {
			t.Errorf("Entries[%d] mismatch: got %+v, want %+v", i, g, w)
		}
		if (g.Result == nil) != (w.Result == nil) {
			t.Fatalf("Entries[%d] result nil mismatch", i)
		}
		if w.Result != nil && (g.Result.CropName != w.Result.CropName ||
			g.Result.DiseaseName != w.Result.DiseaseName ||
			g.Result.Confidence != w.Result.Confidence ||
			g.Result.Status != w.Result.Status ||
			g.Result.Severity != w.Result.Severity) {
			t.Errorf("Entries[%d] result mismatch: got %+v, want %+v", i, g.Result, w.Result)
		}
	}
}

// Feature: cropguard, Markdown report round-trip
func TestMarkdownReportRoundTrip(t *testing.T) {
	r := &render.MarkdownRenderer{}
	rapid.Check(t, func(t *rapid.T) {
		original := generateReport(t)
		data, err := r.Report(original)
		if err != nil {
			t.Fatalf("Report: %v", err)
		}
		for _, section := range []string{"## Summary", "## Results"} {
			if !strings.Contains(string(data), section) {
				t.Errorf("missing section %q", section)
			}
		}
		got, err := render.ParseReport(data)
		if err != nil {
			t.Fatalf("ParseReport: %v", err)
		}
		assertReportEqual(t, got, original)
	})
}

// Feature: cropguard, JSON report round-trip
func TestJSONReportRoundTrip(t *testing.T) {
	r := &render.JSONRenderer{}
	rapid.Check(t, func(t *rapid.T) {
		original := generateReport(t)
		data, err := r.Report(original)
		if err != nil {
			t.Fatalf("Report: %v", err)
		}
		got, err := render.ParseReport(data)
		if err != nil {
			t.Fatalf("ParseReport: %v", err)
		}
		assertReportEqual(t, got, original)
	})
}

func TestReportCounts(t *testing.T) {
	rep := &render.Report{Entries: []render.ReportEntry{
		{File: "a.png", Result: &api.Prediction{Status: api.StatusHealthy}},
		{File: "b.png", Result: &api.Prediction{Status: api.StatusDiseased}},
		{File: "c.png", Result: &api.Prediction{Status: api.StatusUncertain}},
		{File: "d.png", Error: "Model unavailable"},
	}}
	healthy, diseased, failed := rep.Counts()
	if healthy != 1 || diseased != 2 || failed != 1 {
		t.Errorf("Counts() = %d, %d, %d; want 1, 2, 1", healthy, diseased, failed)
	}
}

func TestParseReportRejects(t *testing.T) {
	badJSON := base64.StdEncoding.EncodeToString([]byte("this is not json {{{"))
	cases := map[string]string{
		"plain markdown":    "# Notes\n\n- item\n",
		"missing payload":   "<!-- cropguard-report-version: 1 -->\n\n# Scan\n",
		"corrupted base64":  "<!-- cropguard-report-version: 1 -->\n<!-- cropguard-data: !!!not-base64!!! -->\n",
		"invalid embedded":  "<!-- cropguard-report-version: 1 -->\n<!-- cropguard-data: " + badJSON + " -->\n",
		"unterminated data": "<!-- cropguard-report-version: 1 -->\n<!-- cropguard-data: abc",
		"broken json":       "{\"dir\": ",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := render.ParseReport([]byte(content))
			if !errors.Is(err, render.ErrNotReport) {
				t.Fatalf("err = %v, want ErrNotReport", err)
			}
		})
	}
}
