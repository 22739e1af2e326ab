//go:build property

package watcher

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebouncerProperties checks that a burst of changes collapses into a
// single batch holding each path once.
func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("burst yields one batch with distinct paths", prop.ForAll(
		func(indexes []int) bool {
			if len(indexes) == 0 {
				return true
			}

			d := &Debouncer{
				delay:  20 * time.Millisecond,
				events: make(chan ChangeEvent, len(indexes)),
				output: make(chan []ChangeEvent, 10),
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go d.start(ctx)

			distinct := make(map[string]bool)
			for _, i := range indexes {
				path := fmt.Sprintf("file%d.cls", i)
				distinct[path] = true
				d.events <- ChangeEvent{Path: path, Type: EventTypeModified}
			}

			var batch []ChangeEvent
			select {
			case batch = <-d.output:
			case <-time.After(time.Second):
				return false
			}

			seen := make(map[string]bool)
			for _, e := range batch {
				if seen[e.Path] {
					return false
				}
				seen[e.Path] = true
			}
			if len(seen) != len(distinct) {
				return false
			}

			select {
			case <-d.output:
				return false
			case <-time.After(60 * time.Millisecond):
				return true
			}
		},
		gen.SliceOfN(20, gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
