package registry

import (
	"golang.org/x/text/cases"
)

// foldKey maps a name to its case-folded form so that names differing only
// in case compare equal. A fresh Caser is used per call because Casers keep
// internal state and are not safe for concurrent use.
func foldKey(s string) string {
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are equal under full Unicode case folding.
func EqualFold(a, b string) bool {
	return foldKey(a) == foldKey(b)
}
