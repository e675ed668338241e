package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/detect"
	"github.com/fakeyudi/cropguard/internal/tui"
)

var (
	detectDemo  bool
	detectPlain bool
)

// demoDelay is how long --demo pretends to analyse an image.
var demoDelay = detect.DefaultDemoDelay

// newPredictor returns the demo predictor or a client bound to the stored
// session. The session is optional; signed-in predictions are saved to
// history by the backend.
func newPredictor(demo bool) (detect.Predictor, error) {
	if demo {
		return detect.DemoPredictor{Delay: demoDelay}, nil
	}
	store, err := newStore()
	if err != nil {
		return nil, err
	}
	return newClient(store), nil
}

var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Analyse a leaf image for disease",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		predictor, err := newPredictor(detectDemo)
		if err != nil {
			return err
		}
		flow := detect.NewFlow(predictor, detect.WithObserver(func(t detect.Transition) {
			log.Debug().Uint64("gen", t.Generation).Stringer("from", t.From).Stringer("to", t.To).Msg("detect")
		}))

		if interactive(cmd, detectPlain) {
			_, err := tui.RunDetect(cmd.Context(), flow, args[0])
			return err
		}

		cmd.PrintErrln("Analyzing image…")
		out, err := flow.Detect(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, detect.ErrInvalidImage) {
				return fmt.Errorf("%s: %w", detect.InvalidImageMessage, err)
			}
			return err
		}
		if out.Err != nil {
			return errors.New(api.Message(out.Err))
		}

		data, err := renderer().Prediction(out.Result)
		if err != nil {
			return err
		}
		return output(cmd, data)
	},
}

func init() {
	detectCmd.Flags().BoolVar(&detectDemo, "demo", false, "use built-in sample results instead of the backend")
	detectCmd.Flags().BoolVar(&detectPlain, "plain", false, "print the result instead of opening the interactive view")
	rootCmd.AddCommand(detectCmd)
}
