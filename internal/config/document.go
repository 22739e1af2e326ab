package config

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/matchscan/internal/registry"
	"github.com/conneroisu/matchscan/internal/types"
)

// Document is the scan configuration: the ordered roots, the pattern and
// the first-match-only policy.
type Document struct {
	Roots          []RootEntry `yaml:"roots"`
	Pattern        string      `yaml:"pattern"`
	FirstMatchOnly bool        `yaml:"first_match_only"`

	// dir resolves relative root paths; empty for in-memory documents
	dir string
}

// RootEntry is one configured root as stored on disk.
type RootEntry struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	Directory bool   `yaml:"directory"`
}

// NewDocument returns an empty document with first-match-only enabled.
func NewDocument() *Document {
	return &Document{FirstMatchOnly: true}
}

// isLegacy reports whether path names an XML definition file.
func isLegacy(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rgex", ".xml":
		return true
	}
	return false
}

// LoadDocument reads a scan document. Files ending in .rgex or .xml are
// parsed as legacy XML definitions; everything else is YAML.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	var doc *Document
	if isLegacy(path) {
		doc, err = parseLegacy(data)
	} else {
		doc, err = parseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}

	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		doc.dir = abs
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document %s: %w", path, err)
	}
	return doc, nil
}

// SaveDocument writes doc to path in the format its extension selects.
func SaveDocument(path string, doc *Document) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("document path must be specified")
	}

	var (
		data []byte
		err  error
	)
	if isLegacy(path) {
		data, err = marshalLegacy(doc)
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}
	return nil
}

func parseYAML(data []byte) (*Document, error) {
	doc := NewDocument()
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks that every root has a name and a path.
func (d *Document) Validate() error {
	for i, r := range d.Roots {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("root %d: empty name", i)
		}
		if strings.TrimSpace(r.Path) == "" {
			return fmt.Errorf("root %q: empty path", r.Name)
		}
	}
	return nil
}

// Dir returns the directory relative root paths are resolved against.
func (d *Document) Dir() string {
	return d.dir
}

// RootList converts the entries into typed roots, in order. Relative
// paths are resolved against the document's directory.
func (d *Document) RootList() []types.Root {
	roots := make([]types.Root, 0, len(d.Roots))
	for _, r := range d.Roots {
		path := r.Path
		if d.dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(d.dir, path)
		}
		roots = append(roots, types.NewRoot(r.Name, path, r.Directory))
	}
	return roots
}

// Registry returns a root registry seeded with the document's roots.
func (d *Document) Registry() *registry.RootRegistry {
	return registry.NewRootRegistry(d.RootList()...)
}

// SetRoots replaces the entries with the registry's roots.
func (d *Document) SetRoots(reg *registry.RootRegistry) {
	roots := reg.Roots()
	d.Roots = make([]RootEntry, 0, len(roots))
	for _, r := range roots {
		path := r.Path()
		if d.dir != "" {
			if rel, err := filepath.Rel(d.dir, path); err == nil && !strings.HasPrefix(rel, "..") {
				path = rel
			}
		}
		d.Roots = append(d.Roots, RootEntry{Name: r.Name(), Path: path, Directory: r.IsDirectory()})
	}
}

// legacyDocument mirrors the XML definition files written by the desktop
// tool. Both <Matcher> and <ResourceDefinition> roots are accepted.
type legacyDocument struct {
	XMLName        xml.Name     `xml:"Matcher"`
	Nodes          []legacyNode `xml:"Nodes>ResourceNode"`
	RegEx          string       `xml:"RegEx"`
	FirstMatchOnly *bool        `xml:"FirstMatchOnly"`
}

type legacyNode struct {
	Name      string `xml:"Name"`
	Value     string `xml:"Value"`
	IsFolder  bool   `xml:"IsFolder"`
	Extension string `xml:"Extension,omitempty"`
	Tag       string `xml:"Tag,omitempty"`
}

func parseLegacy(data []byte) (*Document, error) {
	var raw struct {
		Nodes          []legacyNode `xml:"Nodes>ResourceNode"`
		RegEx          string       `xml:"RegEx"`
		FirstMatchOnly *bool        `xml:"FirstMatchOnly"`
	}
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	doc := NewDocument()
	doc.Pattern = raw.RegEx
	if raw.FirstMatchOnly != nil {
		doc.FirstMatchOnly = *raw.FirstMatchOnly
	}
	for _, n := range raw.Nodes {
		doc.Roots = append(doc.Roots, RootEntry{Name: n.Name, Path: n.Value, Directory: n.IsFolder})
	}
	return doc, nil
}

func marshalLegacy(doc *Document) ([]byte, error) {
	first := doc.FirstMatchOnly
	out := legacyDocument{RegEx: doc.Pattern, FirstMatchOnly: &first}
	for _, r := range doc.Roots {
		node := legacyNode{Name: r.Name, Value: r.Path, IsFolder: r.Directory}
		if !r.Directory {
			node.Extension = strings.TrimPrefix(filepath.Ext(r.Path), ".")
		}
		out.Nodes = append(out.Nodes, node)
	}

	body, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
