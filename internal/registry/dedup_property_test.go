//go:build property

package registry

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDedupProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("claims succeed once per folded name", prop.ForAll(
		func(names []string) bool {
			d := NewDedupRegistry()
			seen := make(map[string]bool)
			for _, name := range names {
				key := strings.ToLower(name)
				if d.TryClaim(name) == seen[key] {
					return false
				}
				seen[key] = true
			}
			return d.Len() == len(seen)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("a case variant of a claimed name is rejected", prop.ForAll(
		func(name string) bool {
			d := NewDedupRegistry()
			return d.TryClaim(name) && !d.TryClaim(strings.ToUpper(name)) && !d.TryClaim(strings.ToLower(name))
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
