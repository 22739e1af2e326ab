// Package display renders run events for a terminal. It is an event sink:
// the CLI plugs it into a run next to the failure log.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/conneroisu/matchscan/internal/events"
)

// ColorMode selects when console output is colorized.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// colorScheme defines consistent colors per event kind.
// Green: matched files. Red: failures. Cyan: names. Yellow: summaries.
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	label   *color.Color
	summary *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		label:   color.New(color.FgCyan),
		summary: color.New(color.FgYellow, color.Bold),
	}
	for _, c := range []*color.Color{s.success, s.fail, s.label, s.summary} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Console prints one "> ..." line per event, mirroring the command-line
// tool's progress output. Quiet suppresses everything except failures and
// the summary.
type Console struct {
	writer  io.Writer
	scheme  *colorScheme
	quiet   bool
	verbose bool
	mutex   sync.Mutex
}

// NewConsole creates a console sink writing to w.
func NewConsole(w io.Writer, mode ColorMode, quiet, verbose bool) *Console {
	if w == nil {
		w = io.Discard
	}
	return &Console{
		writer:  w,
		scheme:  newColorScheme(useColor(w, mode)),
		quiet:   quiet,
		verbose: verbose,
	}
}

// useColor resolves the color mode against the writer. Auto colors only
// terminals and honors NO_COLOR through color.NoColor.
func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Emit prints e.
func (c *Console) Emit(e events.Event) {
	line := c.format(e)
	if line == "" {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	fmt.Fprintln(c.writer, line)
}

// Println prints a plain "> " prefixed line.
func (c *Console) Println(text string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	fmt.Fprintf(c.writer, "> %s\n", text)
}

func (c *Console) format(e events.Event) string {
	switch e.Kind {
	case events.KindProcessed:
		if c.quiet {
			return ""
		}
		line := fmt.Sprintf("> %s - %s", c.scheme.label.Sprint(e.Name), c.scheme.success.Sprint(e.Path))
		if c.verbose {
			for _, f := range e.Fragments {
				line += "\n    " + strings.TrimSpace(f)
			}
		}
		return line
	case events.KindSucceeded:
		if c.quiet {
			return ""
		}
		return fmt.Sprintf("> %s - Successful", c.scheme.label.Sprint(e.Name))
	case events.KindFailed:
		return "> " + c.scheme.fail.Sprint(events.FailureLine(e))
	case events.KindMessage:
		return "> " + c.scheme.summary.Sprint(e.Message)
	default:
		return ""
	}
}
