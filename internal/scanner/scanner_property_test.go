//go:build property

package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/matchscan/internal/types"
)

var vocabulary = []string{"find", "FIND", "Find", "customer", "order", "where", "x.", "\n"}

func sentence(picks []int) string {
	words := make([]string, len(picks))
	for i, p := range picks {
		words[i] = vocabulary[p]
	}
	return strings.Join(words, " ")
}

func TestExtractorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	x, err := Compile(`find \w+`)
	if err != nil {
		t.Fatal(err)
	}

	properties.Property("first-only is the head of all matches", prop.ForAll(
		func(picks []int) bool {
			text := sentence(picks)
			all := x.Extract(text, false)
			first := x.Extract(text, true)
			if len(all) == 0 {
				return len(first) == 0
			}
			return len(first) == 1 && first[0] == all[0]
		},
		gen.SliceOf(gen.IntRange(0, len(vocabulary)-1)),
	))

	properties.Property("every fragment occurs in the text", prop.ForAll(
		func(picks []int) bool {
			text := sentence(picks)
			lower := strings.ToLower(text)
			for _, fragment := range x.Extract(text, false) {
				if !strings.Contains(lower, strings.ToLower(fragment)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, len(vocabulary)-1)),
	))

	properties.TestingRun(t)
}

func TestWalkerVisitsEachAllowedFileOnce(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("walk yields each allowed file exactly once", prop.ForAll(
		func(depths []int) bool {
			dir := t.TempDir()
			want := make(map[string]bool)
			for i, depth := range depths {
				segments := []string{dir}
				for d := 0; d < depth; d++ {
					segments = append(segments, fmt.Sprintf("d%d", d))
				}
				ext := "p"
				if i%3 == 0 {
					ext = "txt"
				}
				segments = append(segments, fmt.Sprintf("f%d.%s", i, ext))
				path := filepath.Join(segments...)
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return false
				}
				if err := os.WriteFile(path, nil, 0o644); err != nil {
					return false
				}
				if ext == "p" {
					want[path] = true
				}
			}

			seen := make(map[string]bool)
			for c, err := range NewWalker(DefaultFilter()).Walk(context.Background(), types.DirectoryRoot{RootPath: dir}) {
				if err != nil || seen[c.Path] || !want[c.Path] {
					return false
				}
				seen[c.Path] = true
			}
			return len(seen) == len(want)
		},
		gen.SliceOfN(12, gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
