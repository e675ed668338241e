package detect

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultSettle is how long a file must stay quiet before it is picked up.
const DefaultSettle = 300 * time.Millisecond

// Watcher feeds image files that appear in a directory into a Flow. A file
// that arrives while an earlier one is still being classified supersedes
// it; the earlier outcome is delivered with Stale set.
type Watcher struct {
	Flow   *Flow
	Settle time.Duration

	// OnOutcome and OnReject may be called from several goroutines.
	OnOutcome func(Outcome)
	OnReject  func(path string, err error)
}

// Run watches dir until ctx is cancelled, then waits for in-flight
// requests to finish.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	if w.Flow == nil {
		return errors.New("watcher has no flow")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	var (
		wg    sync.WaitGroup
		ready = make(chan settleMsg)
		done  = make(chan struct{})
	)
	files := newDebouncer(settle, func(m settleMsg) {
		select {
		case ready <- m:
		case <-done:
		}
	})
	defer func() {
		close(done)
		files.stop()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !IsImagePath(event.Name) {
				continue
			}
			// Writes arrive in bursts; restart the quiet period on each one.
			files.touch(event.Name)

		case m := <-ready:
			if !files.settled(m) {
				continue
			}
			path := m.path
			sel, err := w.Flow.Select(ctx, path)
			if err != nil {
				log.Debug().Err(err).Str("path", path).Msg("skipping file")
				if w.OnReject != nil {
					w.OnReject(path, err)
				}
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				out := w.Flow.Submit(sel)
				if w.OnOutcome != nil {
					w.OnOutcome(out)
				}
			}()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}

// settleMsg is delivered when a file has been quiet for the settle period.
type settleMsg struct {
	path string
	seq  uint64
}

type pendingFile struct {
	timer *time.Timer
	seq   uint64
}

// debouncer tracks one settle timer per path. Only the message from the
// most recent touch of a path is accepted by settled, so a timer that fired
// before a later write arrived cannot deliver the path a second time.
// It is not safe for concurrent use; fire runs on the timer goroutine.
type debouncer struct {
	settle  time.Duration
	fire    func(settleMsg)
	seq     uint64
	pending map[string]pendingFile
}

func newDebouncer(settle time.Duration, fire func(settleMsg)) *debouncer {
	return &debouncer{settle: settle, fire: fire, pending: make(map[string]pendingFile)}
}

// touch (re)starts the quiet period for path.
func (d *debouncer) touch(path string) {
	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
	}
	d.seq++
	m := settleMsg{path: path, seq: d.seq}
	d.pending[path] = pendingFile{
		timer: time.AfterFunc(d.settle, func() { d.fire(m) }),
		seq:   m.seq,
	}
}

// settled reports whether m is the latest message for its path and, if so,
// forgets the path.
func (d *debouncer) settled(m settleMsg) bool {
	p, ok := d.pending[m.path]
	if !ok || p.seq != m.seq {
		return false
	}
	delete(d.pending, m.path)
	return true
}

func (d *debouncer) stop() {
	for _, p := range d.pending {
		p.timer.Stop()
	}
}
