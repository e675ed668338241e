package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/detect"
	"github.com/fakeyudi/cropguard/internal/render"
)

var (
	scanDemo        bool
	scanOut         string
	scanMetricsFile string
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Analyse every image in a directory and print a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		files, err := imageFiles(dir)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		scanned := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cropguard_scan_images_total",
			Help: "Images processed by the last scan, by outcome",
		}, []string{"outcome"})
		lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cropguard_scan_last_run_timestamp_seconds",
			Help: "Unix time the last scan finished",
		})
		reg.MustRegister(scanned, lastRun)

		var predictor detect.Predictor
		if scanDemo {
			predictor = detect.DemoPredictor{Delay: 0}
		} else {
			store, err := newStore()
			if err != nil {
				return err
			}
			predictor = newClient(store, api.WithMetrics(api.NewMetrics(reg)))
		}
		flow := detect.NewFlow(predictor)

		rep := &render.Report{Dir: dir, Entries: make([]render.ReportEntry, 0, len(files))}
	scan:
		for i, path := range files {
			rel, _ := filepath.Rel(dir, path)
			cmd.PrintErrf("[%d/%d] %s\n", i+1, len(files), rel)

			entry := render.ReportEntry{File: rel}
			out, err := flow.Detect(cmd.Context(), path)
			switch {
			case err != nil:
				entry.Error = err.Error()
				if errors.Is(err, detect.ErrInvalidImage) {
					entry.Error = detect.InvalidImageMessage
				}
				scanned.WithLabelValues("invalid").Inc()
			case out.Err != nil:
				entry.Error = api.Message(out.Err)
				scanned.WithLabelValues("failed").Inc()
				if errors.Is(out.Err, api.ErrNetwork) {
					log.Warn().Err(out.Err).Msg("backend unreachable, stopping scan")
					rep.Entries = append(rep.Entries, entry)
					break scan
				}
			case out.Result.Healthy():
				entry.Result = out.Result
				scanned.WithLabelValues("healthy").Inc()
			default:
				entry.Result = out.Result
				scanned.WithLabelValues("diseased").Inc()
			}
			rep.Entries = append(rep.Entries, entry)
		}
		rep.GeneratedAt = time.Now().UTC().Truncate(time.Second)
		lastRun.Set(float64(rep.GeneratedAt.Unix()))

		if scanMetricsFile != "" {
			if err := prometheus.WriteToTextfile(scanMetricsFile, reg); err != nil {
				return fmt.Errorf("writing metrics: %w", err)
			}
		}

		if scanOut != "" {
			var r render.Renderer = &render.MarkdownRenderer{}
			if strings.EqualFold(filepath.Ext(scanOut), ".json") {
				r = &render.JSONRenderer{}
			}
			data, err := r.Report(rep)
			if err != nil {
				return err
			}
			if err := os.WriteFile(scanOut, data, 0o644); err != nil {
				return err
			}
			cmd.PrintErrf("Report written to %s\n", scanOut)
		}

		data, err := renderer().Report(rep)
		if err != nil {
			return err
		}
		return output(cmd, data)
	},
}

// imageFiles lists the image files under dir in lexical order.
func imageFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() && detect.IsImagePath(path) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func init() {
	scanCmd.Flags().BoolVar(&scanDemo, "demo", false, "use built-in sample results instead of the backend")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "also save the report to this file (.md or .json)")
	scanCmd.Flags().StringVar(&scanMetricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path")
	rootCmd.AddCommand(scanCmd)
}
