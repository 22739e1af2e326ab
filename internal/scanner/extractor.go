package scanner

import (
	"regexp"
	"strings"

	scanerrors "github.com/conneroisu/matchscan/internal/errors"
)

// Extractor applies one compiled, case-insensitive pattern to file text.
// It performs purely textual extraction and attaches no meaning to matches.
type Extractor struct {
	pattern string
	re      *regexp.Regexp
}

// Compile builds an extractor. An empty or syntactically invalid pattern is
// a configuration error, reported before any file is touched.
func Compile(pattern string) (*Extractor, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, scanerrors.NewConfigurationError("Pattern must be specified.", nil)
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, scanerrors.NewConfigurationError("invalid pattern: "+err.Error(), err)
	}

	return &Extractor{pattern: pattern, re: re}, nil
}

// Pattern returns the source pattern as supplied.
func (x *Extractor) Pattern() string {
	return x.pattern
}

// Extract returns the non-overlapping matches of the pattern in text, in
// order of appearance. With firstOnly it returns at most one.
func (x *Extractor) Extract(text string, firstOnly bool) []string {
	if firstOnly {
		loc := x.re.FindStringIndex(text)
		if loc == nil {
			return nil
		}
		return []string{text[loc[0]:loc[1]]}
	}
	return x.re.FindAllString(text, -1)
}
