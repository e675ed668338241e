package cmd

import (
	"errors"
	"os"
	"os/signal"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/detect"
	"github.com/fakeyudi/cropguard/internal/render"
)

var watchDemo bool

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Analyse every image dropped into a directory",
	Long: `Watch a directory and analyse each new image as it appears.

When a new image arrives while an earlier one is still being analysed, the
earlier request is cancelled and only the newest result is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		predictor, err := newPredictor(watchDemo)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var mu sync.Mutex
		r := renderer()
		w := &detect.Watcher{
			Flow: detect.NewFlow(predictor),
			OnOutcome: func(o detect.Outcome) {
				if o.Stale {
					log.Debug().Str("file", o.Preview.Name).Msg("superseded by a newer image")
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if o.Err != nil {
					cmd.PrintErrf("%s: %s\n", o.Preview.Name, render.Banner(o.Err))
					return
				}
				data, err := r.Prediction(o.Result)
				if err != nil {
					log.Error().Err(err).Msg("render result")
					return
				}
				cmd.Printf("── %s\n", o.Preview.Name)
				if err := output(cmd, data); err != nil {
					log.Error().Err(err).Msg("write result")
				}
			},
			OnReject: func(path string, err error) {
				mu.Lock()
				defer mu.Unlock()
				msg := err.Error()
				if errors.Is(err, detect.ErrInvalidImage) {
					msg = detect.InvalidImageMessage
				}
				cmd.PrintErrf("%s: %s\n", path, msg)
			},
		}

		cmd.PrintErrf("Watching %s for images (ctrl+c to stop)\n", args[0])
		return w.Run(ctx, args[0])
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchDemo, "demo", false, "use built-in sample results instead of the backend")
	rootCmd.AddCommand(watchCmd)
}
