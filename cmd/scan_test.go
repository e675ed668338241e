package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanDemoWritesReportAndMetrics(t *testing.T) {
	tmp := isolate(t)
	leaves := filepath.Join(tmp, "leaves")
	require.NoError(t, os.MkdirAll(filepath.Join(leaves, "row2"), 0o755))
	leafPNG(t, leaves, "a.png")
	leafPNG(t, filepath.Join(leaves, "row2"), "b.png")
	require.NoError(t, os.WriteFile(filepath.Join(leaves, "broken.jpg"), []byte("not a jpeg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(leaves, "notes.txt"), []byte("skip me"), 0o644))

	metrics := filepath.Join(tmp, "scan.prom")
	report := filepath.Join(tmp, "report.md")

	out, err := executeCommand(rootCmd, "scan", "--demo", "--metrics-file", metrics, "--out", report, leaves)
	require.NoError(t, err)
	assert.Contains(t, out, "[1/3] a.png")
	assert.Contains(t, out, "[2/3] broken.jpg")
	assert.NotContains(t, out, "notes.txt")

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `cropguard_scan_images_total{outcome="invalid"} 1`)
	assert.Contains(t, string(prom), "cropguard_scan_last_run_timestamp_seconds")

	saved, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "cropguard-report-version: 1")

	viewed, err := executeCommand(rootCmd, "view", report)
	require.NoError(t, err)
	assert.Contains(t, viewed, "broken.jpg")
	assert.Contains(t, viewed, filepath.Join("row2", "b.png"))
}

func TestScanJSONReportRoundTrips(t *testing.T) {
	tmp := isolate(t)
	leafPNG(t, tmp, "only.png")
	report := filepath.Join(tmp, "report.json")

	_, err := executeCommand(rootCmd, "scan", "--demo", "-o", report, tmp)
	require.NoError(t, err)

	out, err := executeCommand(rootCmd, "view", "--format", "json", report)
	require.NoError(t, err)
	assert.Contains(t, out, `"only.png"`)
}

func TestScanMissingDirectory(t *testing.T) {
	tmp := isolate(t)
	_, err := executeCommand(rootCmd, "scan", "--demo", filepath.Join(tmp, "nope"))
	require.Error(t, err)
}

func TestViewMissingFile(t *testing.T) {
	isolate(t)
	_, err := executeCommand(rootCmd, "view", "missing.md")
	require.Error(t, err)
	assert.Equal(t, "file not found: missing.md", err.Error())
}
