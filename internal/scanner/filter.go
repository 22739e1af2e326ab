package scanner

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions is the comma-separated allow-list of scannable file
// extensions.
const DefaultExtensions = "cls,w,p,i,t"

// ExtensionFilter is an allow-list of file extensions, stored lower-case
// without the leading dot.
type ExtensionFilter struct {
	allowed map[string]struct{}
}

// DefaultFilter returns the filter built from DefaultExtensions.
func DefaultFilter() ExtensionFilter {
	return ParseExtensions(DefaultExtensions)
}

// ParseExtensions builds a filter from a comma-separated list. Blank
// entries and leading dots are ignored.
func ParseExtensions(list string) ExtensionFilter {
	f := ExtensionFilter{allowed: make(map[string]struct{})}
	for _, ext := range strings.Split(list, ",") {
		ext = normalizeExtension(ext)
		if ext != "" {
			f.allowed[ext] = struct{}{}
		}
	}
	return f
}

// IsZero reports whether the filter was never initialized.
func (f ExtensionFilter) IsZero() bool {
	return f.allowed == nil
}

// Allows reports whether path carries an allow-listed extension.
func (f ExtensionFilter) Allows(path string) bool {
	ext := normalizeExtension(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := f.allowed[ext]
	return ok
}

// Extensions returns the allow-list, without dots, in no particular order.
func (f ExtensionFilter) Extensions() []string {
	out := make([]string, 0, len(f.allowed))
	for ext := range f.allowed {
		out = append(out, ext)
	}
	return out
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(ext), ".", ""))
}
