package usage

import (
	"fmt"
	"io"
)

// Sink receives fully formatted usage messages, once per wrapped call.
type Sink interface {
	Log(message string)
}

// SinkFunc adapts a plain func to a Sink.
type SinkFunc func(message string)

// Log calls f(message).
func (f SinkFunc) Log(message string) {
	f(message)
}

// WriterSink writes each message on its own line.
type WriterSink struct {
	W io.Writer
}

// Log writes message and a newline to s.W.
func (s WriterSink) Log(message string) {
	fmt.Fprintln(s.W, message)
}
