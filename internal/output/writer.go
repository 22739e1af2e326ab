// Package output writes the two correlated artifacts of a completed run:
// the primary listing of matched source paths and the fragment listing of
// "<fileName>,<fragment>" lines.
package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/matchscan/internal/types"
)

const (
	// PrimaryExtension is forced onto the output base path.
	PrimaryExtension = ".txt"
	// FragmentsSuffix is appended to the primary stem for the fragment listing.
	FragmentsSuffix = "-matches"
)

// Paths are the artifact locations derived from an output base path.
type Paths struct {
	Primary   string `json:"primary"`
	Fragments string `json:"fragments"`
}

// DerivePaths forces the plain-text extension onto base and forms the
// fragment listing path next to it: "out.xml" gives "out.txt" and
// "out-matches.txt".
func DerivePaths(base string) Paths {
	dir, file := filepath.Split(base)
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	return Paths{
		Primary:   dir + stem + PrimaryExtension,
		Fragments: dir + stem + FragmentsSuffix + PrimaryExtension,
	}
}

// Writer serializes run results. The zero value is ready to use.
type Writer struct{}

// NewWriter creates an artifact writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write persists results to the two artifacts derived from base. Each file
// is written to a temporary sibling, synced and renamed over the target, so
// existing artifacts are replaced whole. An advisory lock on the primary
// path keeps concurrent writers from interleaving the pair.
func (w *Writer) Write(ctx context.Context, base string, results []types.MatchResult) (paths Paths, err error) {
	paths = DerivePaths(base)

	if dir := filepath.Dir(paths.Primary); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	lock := newFileLock(paths.Primary + ".lock")
	if err := lock.lock(ctx); err != nil {
		return paths, err
	}
	defer func() {
		if unlockErr := lock.unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()

	if err := writeFile(paths.Primary, func(bw *bufio.Writer) error {
		return writePrimary(bw, results)
	}); err != nil {
		return paths, err
	}

	if err := writeFile(paths.Fragments, func(bw *bufio.Writer) error {
		return writeFragments(bw, results)
	}); err != nil {
		return paths, err
	}

	return paths, nil
}

// writePrimary emits one source path per result, in record order.
func writePrimary(w io.Writer, results []types.MatchResult) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(w, r.SourcePath); err != nil {
			return err
		}
	}
	return nil
}

// writeFragments emits "<fileName>,<fragment>" per fragment, in record order.
func writeFragments(w io.Writer, results []types.MatchResult) error {
	for _, r := range results {
		name := filepath.Base(r.SourcePath)
		for _, fragment := range r.Fragments {
			if _, err := fmt.Fprintf(w, "%s,%s\n", name, fragment); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeFile writes path atomically through a buffered temp file.
func writeFile(path string, fill func(*bufio.Writer) error) error {
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	bw := bufio.NewWriter(tempFile)
	if err := fill(bw); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}
