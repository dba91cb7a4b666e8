package report

import (
	"fmt"
	"io"
	"strings"
)

// Separator borders every timing block.
var Separator = strings.Repeat("=", 40)

// Entry is a timestamped log entry. It is built and written immediately,
// never stored.
type Entry struct {
	Timestamp string // YYYY-MM-DD HH:MM:SS
	Message   string
	Elapsed   string // empty means no elapsed line
}

// NewEntry creates an entry
func NewEntry(timestamp, message, elapsed string) Entry {
	return Entry{
		Timestamp: timestamp,
		Message:   message,
		Elapsed:   elapsed,
	}
}

// String renders the bordered block, including the trailing blank line.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(Separator)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s - %s\n", e.Timestamp, e.Message)
	if e.Elapsed != "" {
		fmt.Fprintf(&b, "Elapsed time: %s\n", e.Elapsed)
	}
	b.WriteString(Separator)
	b.WriteString("\n\n")
	return b.String()
}

// WriteTo writes the whole block in a single Write so that blocks from
// concurrent callers never interleave.
func (e Entry) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, e.String())
	return int64(n), err
}

// Usage is a pair of readings taken around one call.
type Usage struct {
	Name   string
	Before float64
	After  float64
}

// NewUsage creates a usage sample
func NewUsage(name string, before, after float64) Usage {
	return Usage{Name: name, Before: before, After: after}
}

// Delta is the only value that gets reported
func (u Usage) Delta() float64 {
	return u.After - u.Before
}
