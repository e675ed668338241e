package detect

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/cropguard/internal/api"
)

// gatedPredictor blocks each call until a response is pushed for it.
type gatedPredictor struct {
	mu     sync.Mutex
	calls  int
	byFile map[string]context.Context
	resp   chan gatedResponse
}

type gatedResponse struct {
	pred *api.Prediction
	err  error
}

func newGatedPredictor() *gatedPredictor {
	return &gatedPredictor{byFile: make(map[string]context.Context), resp: make(chan gatedResponse)}
}

func (g *gatedPredictor) Predict(ctx context.Context, up api.Upload) (*api.Prediction, error) {
	g.mu.Lock()
	g.calls++
	g.byFile[up.Filename] = ctx
	g.mu.Unlock()
	r := <-g.resp
	return r.pred, r.err
}

// instantPredictor answers immediately and counts calls.
type instantPredictor struct {
	mu    sync.Mutex
	calls int
}

func (p *instantPredictor) Predict(ctx context.Context, _ api.Upload) (*api.Prediction, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return &api.Prediction{CropName: "Tomato", Status: api.StatusHealthy, Confidence: 97}, nil
}

func TestDetectComplete(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "leaf.png", pngBytes(t, 2, 2))

	var transitions []Transition
	f := NewFlow(&instantPredictor{}, WithObserver(func(tr Transition) {
		transitions = append(transitions, tr)
	}))

	out, err := f.Detect(context.Background(), path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if out.State() != Complete || out.Stale {
		t.Fatalf("outcome = %+v", out)
	}

	snap := f.Snapshot()
	if snap.State != Complete {
		t.Errorf("State = %v, want complete", snap.State)
	}
	if snap.Result == nil || snap.Result.CropName != "Tomato" {
		t.Errorf("Result = %+v", snap.Result)
	}
	if snap.Preview == nil || snap.Preview.Name != "leaf.png" {
		t.Errorf("Preview = %+v", snap.Preview)
	}

	want := []Transition{
		{From: Idle, To: Loading, Generation: 1},
		{From: Loading, To: Complete, Generation: 1},
	}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %+v, want %+v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %+v, want %+v", i, transitions[i], want[i])
		}
	}
}

func TestDetectFailureReturnsToIdle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "leaf.png", pngBytes(t, 2, 2))

	g := newGatedPredictor()
	f := NewFlow(g)

	sel, err := f.Select(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Snapshot().State; got != Loading {
		t.Fatalf("State = %v, want loading", got)
	}

	serverErr := &api.APIError{StatusCode: 500, Message: "Model unavailable"}
	done := make(chan Outcome, 1)
	go func() { done <- f.Submit(sel) }()
	g.resp <- gatedResponse{err: serverErr}
	out := <-done

	if out.State() != Failed {
		t.Errorf("outcome state = %v, want failed", out.State())
	}
	if api.Message(out.Err) != "Model unavailable" {
		t.Errorf("message = %q", api.Message(out.Err))
	}
	snap := f.Snapshot()
	if snap.State != Idle {
		t.Errorf("State = %v, want idle", snap.State)
	}
	if !errors.Is(snap.LastErr, serverErr) {
		t.Errorf("LastErr = %v", snap.LastErr)
	}
	if snap.Result != nil {
		t.Errorf("Result = %+v, want nil", snap.Result)
	}
}

func TestNewSelectionDiscardsStaleResponse(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.png", pngBytes(t, 2, 2))
	second := writeFile(t, dir, "second.png", pngBytes(t, 3, 3))

	g := newGatedPredictor()
	f := NewFlow(g)
	ctx := context.Background()

	selA, err := f.Select(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	outA := make(chan Outcome, 1)
	go func() { outA <- f.Submit(selA) }()

	selB, err := f.Select(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	outB := make(chan Outcome, 1)
	go func() { outB <- f.Submit(selB) }()

	// Both requests are in flight before anything is answered.
	deadline := time.Now().Add(2 * time.Second)
	for {
		g.mu.Lock()
		n := g.calls
		g.mu.Unlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("predictor saw %d calls, want 2", n)
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The two Submit goroutines may reach the predictor in either order.
	g.mu.Lock()
	ctxA, ctxB := g.byFile["first.png"], g.byFile["second.png"]
	g.mu.Unlock()
	if ctxA == nil || ctxB == nil {
		t.Fatalf("predictor contexts = %v, want first.png and second.png", g.byFile)
	}
	if ctxA.Err() == nil {
		t.Error("first request context was not cancelled by the second selection")
	}
	if ctxB.Err() != nil {
		t.Errorf("second request context cancelled: %v", ctxB.Err())
	}

	// Answer the calls in arrival order; whichever call is the first one
	// gets the stale answer.
	g.resp <- gatedResponse{pred: &api.Prediction{CropName: "One"}}
	g.resp <- gatedResponse{pred: &api.Prediction{CropName: "Two"}}
	a, b := <-outA, <-outB

	if !a.Stale {
		t.Errorf("first outcome not stale: %+v", a)
	}
	if b.Stale {
		t.Errorf("second outcome stale: %+v", b)
	}

	snap := f.Snapshot()
	if snap.State != Complete {
		t.Fatalf("State = %v, want complete", snap.State)
	}
	if snap.Result != b.Result {
		t.Errorf("Result = %+v, want the second selection's result %+v", snap.Result, b.Result)
	}
	if snap.Preview == nil || snap.Preview.Name != "second.png" {
		t.Errorf("Preview = %+v, want second.png", snap.Preview)
	}
}

func TestResetDropsInflightResult(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "leaf.png", pngBytes(t, 2, 2))

	g := newGatedPredictor()
	f := NewFlow(g)
	sel, err := f.Select(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan Outcome, 1)
	go func() { done <- f.Submit(sel) }()

	f.Reset()
	g.resp <- gatedResponse{pred: &api.Prediction{CropName: "Late"}}
	out := <-done

	if !out.Stale {
		t.Errorf("outcome after reset not stale: %+v", out)
	}
	snap := f.Snapshot()
	if snap.State != Idle || snap.Result != nil || snap.Preview != nil {
		t.Errorf("snapshot after reset = %+v", snap)
	}
}

// Feature: cropguard, each valid selection enters loading exactly once and
// invalid files never reach the predictor
func TestSelectionLoadingProperty(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "ok.png", pngBytes(t, 1, 1))
	invalid := []string{
		writeFile(t, dir, "doc.txt", []byte("text")),
		writeFile(t, dir, "fake.png", []byte("not really a png")),
		writeFile(t, dir, "empty.webp", nil),
	}

	rapid.Check(t, func(t *rapid.T) {
		p := &instantPredictor{}
		loading := 0
		f := NewFlow(p, WithObserver(func(tr Transition) {
			if tr.To == Loading {
				loading++
			}
		}))

		picks := rapid.SliceOfN(rapid.IntRange(-1, len(invalid)-1), 1, 20).Draw(t, "picks")
		wantValid := 0
		for _, i := range picks {
			path := valid
			if i >= 0 {
				path = invalid[i]
			}
			before := f.Snapshot()
			out, err := f.Detect(context.Background(), path)
			if i >= 0 {
				if !errors.Is(err, ErrInvalidImage) {
					t.Fatalf("Detect(%s) err = %v, want ErrInvalidImage", path, err)
				}
				after := f.Snapshot()
				if after.State != before.State || after.Generation != before.Generation {
					t.Fatalf("invalid selection changed state: %+v -> %+v", before, after)
				}
				continue
			}
			wantValid++
			if err != nil || out.Stale {
				t.Fatalf("Detect(valid) = %+v, %v", out, err)
			}
		}

		if loading != wantValid {
			t.Fatalf("loading transitions = %d, want %d", loading, wantValid)
		}
		if p.calls != wantValid {
			t.Fatalf("predictor calls = %d, want %d", p.calls, wantValid)
		}
	})
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Loading: "loading", Complete: "complete", Failed: "failed", State(9): "unknown"} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
