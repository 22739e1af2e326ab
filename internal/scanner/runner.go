// Package scanner implements the scan-and-match engine: it walks the
// configured roots, filters files by extension, extracts pattern fragments
// from each candidate, deduplicates by logical name and reports progress to
// an event sink.
//
// A Runner executes one run at a time on the calling goroutine. Callers
// that need the scan in the background start Run in its own goroutine and
// observe it through the sink; cancellation is cooperative through the
// context, which is checked before every candidate, before every file the
// walker yields and before every subdirectory descent.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	scanerrors "github.com/conneroisu/matchscan/internal/errors"
	"github.com/conneroisu/matchscan/internal/events"
	"github.com/conneroisu/matchscan/internal/logging"
	"github.com/conneroisu/matchscan/internal/output"
	"github.com/conneroisu/matchscan/internal/registry"
	"github.com/conneroisu/matchscan/internal/types"
)

// ErrRunInProgress is returned when Run is called while another run of the
// same Runner has not finished.
var ErrRunInProgress = errors.New("a run is already in progress")

// State is the run state machine: Idle, Running, then one of the terminal
// states Completed, Cancelled or Failed.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events follow this state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Job is the in-memory configuration of one run.
type Job struct {
	Roots     []types.Root
	Pattern   string
	FirstOnly bool
	// Extensions defaults to DefaultFilter when zero
	Extensions ExtensionFilter
	// OutputBase is the path the two artifacts are derived from
	OutputBase string
	// ClaimUnmatched also claims the names of files that scanned without
	// a match, so later files with the same name become duplicates
	ClaimUnmatched bool
}

// Report summarizes a finished run.
type Report struct {
	RunID   string
	State   State
	Scanned int
	Matched int
	Results []types.MatchResult
	// Paths is set only when the artifacts were written
	Paths    output.Paths
	Duration time.Duration
}

// ResultWriter persists the results of a completed run.
type ResultWriter interface {
	Write(ctx context.Context, base string, results []types.MatchResult) (output.Paths, error)
}

// Runner orchestrates roots, walker, extractor and dedup registry into a run.
type Runner struct {
	state  atomic.Int32
	active atomic.Bool
	dedup  *registry.DedupRegistry
	writer ResultWriter
	logger logging.Logger
	newID  func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for run lifecycle messages.
func WithLogger(logger logging.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithWriter replaces the artifact writer.
func WithWriter(w ResultWriter) Option {
	return func(r *Runner) {
		if w != nil {
			r.writer = w
		}
	}
}

// NewRunner creates an idle runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		dedup:  registry.NewDedupRegistry(),
		writer: output.NewWriter(),
		logger: logging.Nop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent("scanner")
	return r
}

// State returns the current state. Safe to call from any goroutine.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// run holds the mutable state of one pass.
type run struct {
	id        string
	job       Job
	extractor *Extractor
	walker    *Walker
	sink      events.Sink
	report    *Report
}

// Run executes job, emitting events into sink in the order they happen.
// Per-file failures are reported as events and never returned. The only
// errors returned are configuration errors (the run is Failed and nothing
// was processed), ErrRunInProgress, and a failure to write the artifacts of
// a completed run. A cancelled run returns a report with StateCancelled,
// writes no artifacts and emits no summary.
func (r *Runner) Run(ctx context.Context, job Job, sink events.Sink) (*Report, error) {
	if !r.active.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.active.Store(false)

	if sink == nil {
		sink = events.Discard
	}

	report := &Report{RunID: r.newID()}
	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	extractor, err := validateJob(job)
	if err != nil {
		report.State = StateFailed
		r.state.Store(int32(StateFailed))
		r.logger.Error(ctx, err, "Scan configuration rejected", "run_id", report.RunID)
		return report, err
	}
	if job.Extensions.IsZero() {
		job.Extensions = DefaultFilter()
	}

	r.state.Store(int32(StateRunning))
	r.dedup.Reset()

	p := &run{
		id:        report.RunID,
		job:       job,
		extractor: extractor,
		walker:    NewWalker(job.Extensions),
		sink:      sink,
		report:    report,
	}

	logger := r.logger.With("run_id", p.id)
	perf := logging.StartOperation(logger, "scan")
	logger.Info(ctx, "Scan started", "roots", len(job.Roots), "pattern", job.Pattern, "first_only", job.FirstOnly)

	r.scanRoots(ctx, p)

	if ctx.Err() != nil {
		report.State = StateCancelled
		r.state.Store(int32(StateCancelled))
		perf.End(ctx, "state", report.State.String(), "scanned", report.Scanned, "matched", report.Matched)
		return report, nil
	}

	p.message(fmt.Sprintf("SCANNED: %d files", report.Scanned))
	p.message(fmt.Sprintf("WITH LITERAL: %d files", report.Matched))
	p.emit(events.Event{Kind: events.KindSummary, Scanned: report.Scanned, Matched: report.Matched})

	report.State = StateCompleted
	r.state.Store(int32(StateCompleted))

	paths, err := r.writer.Write(context.WithoutCancel(ctx), job.OutputBase, report.Results)
	if err != nil {
		perf.EndWithError(ctx, err)
		return report, fmt.Errorf("writing results: %w", err)
	}
	report.Paths = paths

	perf.End(ctx, "state", report.State.String(), "scanned", report.Scanned, "matched", report.Matched, "output", paths.Primary)
	return report, nil
}

// validateJob reports configuration errors before any candidate is touched.
func validateJob(job Job) (*Extractor, error) {
	if strings.TrimSpace(job.OutputBase) == "" {
		return nil, scanerrors.NewConfigurationError("Filename must be specified.", nil)
	}
	return Compile(job.Pattern)
}

// scanRoots visits every root in configuration order until ctx is done.
func (r *Runner) scanRoots(ctx context.Context, p *run) {
	for _, root := range p.job.Roots {
		if ctx.Err() != nil {
			return
		}

		switch root := root.(type) {
		case types.DirectoryRoot:
			for candidate, err := range p.walker.Walk(ctx, root) {
				if err != nil {
					p.fail(walkError(candidate, err))
					continue
				}
				if !r.candidate(ctx, p, candidate) {
					return
				}
			}
		default:
			if !r.candidate(ctx, p, types.Candidate{Name: root.Name(), Path: root.Path()}) {
				return
			}
		}
	}
}

// candidate processes one candidate. It returns false when ctx was
// cancelled before the candidate could start.
func (r *Runner) candidate(ctx context.Context, p *run, c types.Candidate) bool {
	if ctx.Err() != nil {
		return false
	}

	if r.dedup.Claimed(c.Name) {
		p.fail(scanerrors.NewDuplicateKeyError(c.Name, c.Path))
		return true
	}

	if _, err := os.Stat(c.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.fail(scanerrors.NewNotFoundError(c.Name, c.Path, err))
		} else {
			p.fail(scanerrors.NewExtractionError(c.Name, c.Path, err))
		}
		return true
	}

	content, err := os.ReadFile(c.Path)
	if err != nil {
		p.fail(scanerrors.NewExtractionError(c.Name, c.Path, err))
		return true
	}

	fragments := p.extractor.Extract(string(content), p.job.FirstOnly)
	p.report.Scanned++

	if len(fragments) > 0 {
		r.dedup.TryClaim(c.Name)
		p.report.Results = append(p.report.Results, types.MatchResult{
			LogicalName: c.Name,
			SourcePath:  c.Path,
			Fragments:   fragments,
		})
		p.report.Matched++
		p.emit(events.Event{Kind: events.KindProcessed, Name: c.Name, Path: c.Path, Fragments: fragments})
	} else if p.job.ClaimUnmatched {
		r.dedup.TryClaim(c.Name)
	}

	p.emit(events.Event{Kind: events.KindSucceeded, Name: c.Name, Path: c.Path})
	return true
}

// walkError converts a directory listing failure into a scan error.
func walkError(c types.Candidate, err error) *scanerrors.ScanError {
	if errors.Is(err, fs.ErrNotExist) {
		return scanerrors.NewNotFoundError(c.Name, c.Path, err)
	}
	return scanerrors.NewExtractionError(c.Name, c.Path, err)
}

func (p *run) emit(e events.Event) {
	e.RunID = p.id
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	p.sink.Emit(e)
}

func (p *run) fail(err *scanerrors.ScanError) {
	p.emit(events.Event{
		Kind:    events.KindFailed,
		Name:    err.Name,
		Path:    err.Path,
		Reason:  err.Kind,
		Message: err.Reason(),
	})
}

func (p *run) message(text string) {
	p.emit(events.Event{Kind: events.KindMessage, Message: text})
}
