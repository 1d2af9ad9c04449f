package entity

import (
	"fmt"
	"time"
)

// TraceEvent is one entry in the diagnostic trace emitted while a portfolio
// is reconstructed. The trace is an ordered list returned alongside the
// result, intended for support/debugging surfaces rather than programmatic
// consumption.
type TraceEvent struct {
	Time    time.Time `json:"time"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Err     string    `json:"error,omitempty"`
}

// Trace accumulates TraceEvents in order. Not safe for concurrent use;
// each reconstruction owns its own Trace.
type Trace struct {
	events []TraceEvent
}

// Addf appends a formatted event for the given stage.
func (t *Trace) Addf(stage, format string, args ...any) {
	t.events = append(t.events, TraceEvent{
		Time:    time.Now().UTC(),
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
	})
}

// AddErr appends an event recording a non-fatal failure.
func (t *Trace) AddErr(stage string, err error, format string, args ...any) {
	ev := TraceEvent{
		Time:    time.Now().UTC(),
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
	}
	if err != nil {
		ev.Err = err.Error()
	}
	t.events = append(t.events, ev)
}

// Events returns the accumulated events in emission order.
func (t *Trace) Events() []TraceEvent {
	return t.events
}
