package timing

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/psantana5/ct/internal/observe"
	"github.com/psantana5/ct/internal/report"
)

// Reporter prints bordered timing blocks to a writer.
type Reporter struct {
	mu    sync.Mutex
	out   io.Writer
	clock observe.Clock
}

var defaultReporter = NewReporter(os.Stdout)

// NewReporter creates a reporter writing to w. A nil w means stdout.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	return &Reporter{out: w, clock: time.Now}
}

// Default returns the stdout reporter used by Log and by wrappers given a
// nil reporter.
func Default() *Reporter {
	return defaultReporter
}

// SetOutput redirects the reporter. A nil w means stdout.
func (r *Reporter) SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = w
}

// SetClock replaces the time source used for timestamps and durations.
func (r *Reporter) SetClock(clock observe.Clock) {
	if clock == nil {
		clock = time.Now
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = clock
}

func (r *Reporter) now() time.Time {
	r.mu.Lock()
	clock := r.clock
	r.mu.Unlock()
	return clock()
}

// Log prints a separator, "<timestamp> - <message>", an "Elapsed time:" line
// when elapsed is non-empty, a closing separator and a blank line.
func (r *Reporter) Log(message, elapsed string) {
	entry := report.NewEntry(Timestamp(r.now()), message, elapsed)

	r.mu.Lock()
	defer r.mu.Unlock()
	entry.WriteTo(r.out)
}

// Log prints a block through the default reporter.
func Log(message, elapsed string) {
	defaultReporter.Log(message, elapsed)
}

// measure runs call and, only if it returns nil, logs message with the elapsed
// time. Panics and errors from call skip logging.
func (r *Reporter) measure(message string, call func() error) error {
	t := observe.NewTimingWithClock(r.now)
	if err := call(); err != nil {
		return err
	}
	t.Complete()
	r.Log(message, FormatElapsed(t.Duration()))
	return nil
}

func finishedMessage(name string) string {
	return fmt.Sprintf("Function %s finished", name)
}

func orDefault(r *Reporter) *Reporter {
	if r == nil {
		return defaultReporter
	}
	return r
}
