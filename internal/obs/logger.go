// Package obs wires the ambient observability stack: structured logging via
// the teacher's logiface/stumpy, and rate-based metrics derived from the
// teacher's catrate sliding-window limiter (spec.md names logging and
// metrics as out-of-scope collaborators in §1, but the ambient stack itself
// is carried regardless — see SPEC_FULL.md §8).
package obs

import (
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the type internal/cucp and cmd/gnb-cucp log through, grounded on stumpy's example wiring (stumpy.L.New(...)).
type Logger = logiface.Logger[*stumpy.Event]

// NewLogger builds a Logger writing newline-delimited JSON to w (os.Stderr
// if nil), following stumpy's default field layout.
func NewLogger(w *os.File) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
	)
}

// Component returns a child logger annotated with a "component" field,
// following the teacher's convention of per-subsystem loggers rather than
// one global instance threaded everywhere unnamed.
func Component(l *Logger, name string) *Logger {
	c := l.Clone()
	if c == nil {
		return l
	}
	return c.Str("component", name).Logger()
}
