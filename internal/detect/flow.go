// Package detect drives one image through validation, upload and result.
//
// A Flow moves Idle -> Loading -> Complete, or back to Idle with the error
// retained when the request fails. Every selection gets a generation
// number; selecting again while a request is in flight cancels it, and a
// response that arrives for an older generation is reported as stale and
// never overwrites the newer state.
package detect

import (
	"bytes"
	"context"
	"sync"

	"github.com/fakeyudi/cropguard/internal/api"
)

// State is the position of a Flow.
type State int

const (
	Idle State = iota
	Loading
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Predictor classifies an uploaded image. *api.Client implements it.
type Predictor interface {
	Predict(ctx context.Context, up api.Upload) (*api.Prediction, error)
}

// Transition is reported to observers on every state change.
type Transition struct {
	From, To   State
	Generation uint64
}

// Selection is a validated image whose request has not resolved yet.
type Selection struct {
	gen uint64
	img *Image
	ctx context.Context
}

// Generation identifies the selection within its Flow.
func (s *Selection) Generation() uint64 { return s.gen }

// Preview describes the selected image.
func (s *Selection) Preview() Preview { return s.img.Preview }

// Outcome is how one selection ended.
type Outcome struct {
	Generation uint64
	Preview    Preview
	Result     *api.Prediction
	Err        error
	// Stale is set when a newer selection superseded this one; the flow's
	// state was left untouched.
	Stale bool
}

// State is Complete for a result and Failed for an error.
func (o Outcome) State() State {
	if o.Err != nil {
		return Failed
	}
	return Complete
}

// Snapshot is a copy of the flow's current state.
type Snapshot struct {
	State      State
	Generation uint64
	Preview    *Preview
	Result     *api.Prediction
	LastErr    error
}

// Flow is safe for concurrent use.
type Flow struct {
	predictor Predictor
	observe   func(Transition)

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	preview *Preview
	result  *api.Prediction
	lastErr error
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithObserver registers fn to be called after every transition.
func WithObserver(fn func(Transition)) FlowOption {
	return func(f *Flow) { f.observe = fn }
}

// NewFlow returns an idle flow that sends images to p.
func NewFlow(p Predictor, opts ...FlowOption) *Flow {
	f := &Flow{predictor: p}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Select validates the image at path. An invalid file leaves the flow
// untouched and no request is made. A valid one cancels any in-flight
// request and moves the flow to Loading.
func (f *Flow) Select(ctx context.Context, path string) (*Selection, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	reqCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	from := f.state
	f.state = Loading
	preview := img.Preview
	f.preview = &preview
	f.result = nil
	f.lastErr = nil
	sel := &Selection{gen: f.gen, img: img, ctx: reqCtx}
	f.mu.Unlock()

	f.notify(Transition{From: from, To: Loading, Generation: sel.gen})
	return sel, nil
}

// Submit sends the selection to the predictor and applies the response.
// It blocks until the request resolves.
func (f *Flow) Submit(sel *Selection) Outcome {
	res, err := f.predictor.Predict(sel.ctx, api.Upload{
		Filename:    sel.img.Preview.Name,
		ContentType: sel.img.Preview.ContentType,
		Body:        bytes.NewReader(sel.img.Data),
	})
	return f.finish(sel, res, err)
}

func (f *Flow) finish(sel *Selection, res *api.Prediction, err error) Outcome {
	out := Outcome{Generation: sel.gen, Preview: sel.img.Preview, Result: res, Err: err}

	f.mu.Lock()
	if sel.gen != f.gen || f.state != Loading {
		f.mu.Unlock()
		out.Stale = true
		return out
	}
	f.cancel()
	f.cancel = nil
	var t Transition
	if err != nil {
		// The failure is surfaced through the outcome; the flow itself is
		// ready for the next selection.
		f.state = Idle
		f.lastErr = err
		f.result = nil
		t = Transition{From: Loading, To: Failed, Generation: sel.gen}
	} else {
		f.state = Complete
		f.result = res
		t = Transition{From: Loading, To: Complete, Generation: sel.gen}
	}
	f.mu.Unlock()

	f.notify(t)
	if err != nil {
		f.notify(Transition{From: Failed, To: Idle, Generation: sel.gen})
	}
	return out
}

// Detect selects path and waits for its outcome.
func (f *Flow) Detect(ctx context.Context, path string) (Outcome, error) {
	sel, err := f.Select(ctx, path)
	if err != nil {
		return Outcome{}, err
	}
	return f.Submit(sel), nil
}

// Reset cancels any in-flight request and returns to Idle, dropping the
// preview and result.
func (f *Flow) Reset() {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	from := f.state
	f.gen++
	f.state = Idle
	f.preview = nil
	f.result = nil
	f.lastErr = nil
	gen := f.gen
	f.mu.Unlock()

	if from != Idle {
		f.notify(Transition{From: from, To: Idle, Generation: gen})
	}
}

// Snapshot returns the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		State:      f.state,
		Generation: f.gen,
		Preview:    f.preview,
		Result:     f.result,
		LastErr:    f.lastErr,
	}
}

func (f *Flow) notify(t Transition) {
	if f.observe != nil {
		f.observe(t)
	}
}
