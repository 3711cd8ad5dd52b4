package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

const (
	UpdateProgress = "progress"
	UpdateDone     = "done"
	UpdateError    = "error"
)

const subscriberBuffer = 32

// Update is one event of a run as streamed to clients.
type Update struct {
	Type string
	Data any
}

// ErrorEvent is the payload of an error update.
type ErrorEvent struct {
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

// Run tracks one background analysis and fans its updates out to any number
// of subscribers. Late subscribers first receive the latest update.
type Run struct {
	LectureID string
	SampleSec float64
	StartedAt time.Time

	mu       sync.Mutex
	last     *Update
	subs     map[chan Update]struct{}
	finished bool
	result   *models.AnalysisResult
	err      error
	done     chan struct{}
}

func newRun(lectureID string, sampleSec float64, startedAt time.Time) *Run {
	return &Run{
		LectureID: lectureID,
		SampleSec: sampleSec,
		StartedAt: startedAt,
		subs:      make(map[chan Update]struct{}),
		done:      make(chan struct{}),
	}
}

// Subscribe returns a channel of updates that is closed once the run finishes,
// and a function that detaches the subscriber early.
func (r *Run) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last != nil {
		ch <- *r.last
	}
	if r.finished {
		close(ch)
		return ch, func() {}
	}
	r.subs[ch] = struct{}{}

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.subs[ch]; ok {
			delete(r.subs, ch)
			close(ch)
		}
	}
}

// Last returns the most recent update, if any.
func (r *Run) Last() (Update, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Update{}, false
	}
	return *r.last, true
}

func (r *Run) Done() <-chan struct{} {
	return r.done
}

func (r *Run) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// Result returns the outcome of a finished run.
func (r *Run) Result() (*models.AnalysisResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.err
}

// Wait blocks until the run finishes or ctx is done.
func (r *Run) Wait(ctx context.Context) (*models.AnalysisResult, error) {
	select {
	case <-r.done:
		return r.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// publish never blocks; slow subscribers miss intermediate progress.
func (r *Run) publish(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.last = &u
	for ch := range r.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

func (r *Run) finish(u Update, result *models.AnalysisResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.finished = true
	r.last = &u
	r.result = result
	r.err = err
	for ch := range r.subs {
		select {
		case ch <- u:
		default:
			// Make room so the terminal event is always delivered.
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
		close(ch)
		delete(r.subs, ch)
	}
	close(r.done)
}
