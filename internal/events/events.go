// Package events defines the progress and failure events raised by a scan
// run and the sinks that deliver them to callers.
//
// A run emits events strictly in the order it raises them. Sinks must not
// reorder or batch events; ChannelSink queues them so that a slow consumer
// never blocks the scan worker.
package events

import (
	"fmt"
	"time"

	scanerrors "github.com/conneroisu/matchscan/internal/errors"
)

// Kind represents the type of run event.
type Kind string

const (
	KindProcessed Kind = "processed"
	KindSucceeded Kind = "succeeded"
	KindFailed    Kind = "failed"
	KindMessage   Kind = "message"
	KindSummary   Kind = "summary"
)

// Event is a single progress notification from a run.
type Event struct {
	Kind  Kind   `json:"kind"`
	RunID string `json:"run_id"`
	// Name is the candidate's logical name
	Name string `json:"name,omitempty"`
	// Path is the candidate's file path
	Path string `json:"path,omitempty"`
	// Fragments are set on processed events
	Fragments []string `json:"fragments,omitempty"`
	// Reason classifies failed events
	Reason scanerrors.Kind `json:"reason,omitempty"`
	// Message is the failure text or an informational line
	Message string `json:"message,omitempty"`
	// Scanned and Matched are set on summary events; zero totals are
	// still serialized
	Scanned   int       `json:"scanned"`
	Matched   int       `json:"matched"`
	Timestamp time.Time `json:"timestamp"`
}

// String renders the event the way the console and logs print it.
func (e Event) String() string {
	switch e.Kind {
	case KindProcessed:
		return fmt.Sprintf("%s - %s", e.Name, e.Path)
	case KindSucceeded:
		return fmt.Sprintf("%s - Successful", e.Name)
	case KindFailed:
		return FailureLine(e)
	case KindSummary:
		return fmt.Sprintf("SCANNED: %d files, WITH LITERAL: %d files", e.Scanned, e.Matched)
	default:
		return e.Message
	}
}

// FailureLine formats a failed event as "<name> - Failed: <reason>".
func FailureLine(e Event) string {
	return fmt.Sprintf("%s - Failed: %s", e.Name, e.Message)
}

// Sink receives run events. Emit is called from the scan worker and must
// not block for long.
type Sink interface {
	Emit(Event)
}

// FuncSink adapts a function to Sink. Delivery is synchronous, so the
// function runs on the scan worker before the next checkpoint.
type FuncSink func(Event)

// Emit calls f(e).
func (f FuncSink) Emit(e Event) {
	f(e)
}

// Discard drops every event.
var Discard Sink = FuncSink(func(Event) {})

// MultiSink fans every event out to several sinks in order.
type MultiSink []Sink

// Emit delivers e to each sink in turn.
func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// Recorder is a sink that keeps every event in memory.
type Recorder struct {
	Events []Event
}

// Emit appends e.
func (r *Recorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// OfKind returns the recorded events of kind k in order.
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
