package build

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
	"github.com/conneroisu/unidom/internal/errors"
)

// OutputWriter owns the build directory. It empties it, writes generated
// files and copies source resources next to them.
type OutputWriter struct {
	outputDir string
	sourceDir string
	// skip holds source-relative, slash separated paths that are compiled
	// rather than copied
	skip   map[string]bool
	ignore []string
}

// NewOutputWriter creates a writer copying resources from sourceDir to
// outputDir. Paths in skip are relative to sourceDir; ignore holds globs
// matched against the same relative paths.
func NewOutputWriter(outputDir, sourceDir string, skip, ignore []string) *OutputWriter {
	w := &OutputWriter{
		outputDir: outputDir,
		sourceDir: sourceDir,
		skip:      make(map[string]bool, len(skip)),
		ignore:    ignore,
	}
	for _, s := range skip {
		w.skip[filepath.ToSlash(filepath.Clean(s))] = true
	}
	return w
}

// Clean empties the output directory, creating it when missing.
func (w *OutputWriter) Clean() error {
	entries, err := os.ReadDir(w.outputDir)
	if err != nil && !os.IsNotExist(err) {
		return errors.NewIOError(errors.ErrCodeFileWrite, "reading output directory", err).WithFile(w.outputDir)
	}

	for _, entry := range entries {
		path := filepath.Join(w.outputDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return errors.NewIOError(errors.ErrCodeFileWrite, "emptying output directory", err).WithFile(path)
		}
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWrite, "creating output directory", err).WithFile(w.outputDir)
	}
	return nil
}

// WriteFile writes data to name inside the output directory.
func (w *OutputWriter) WriteFile(name string, data []byte) error {
	path := filepath.Join(w.outputDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWrite, "creating directory", err).WithFile(path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWrite, "writing output file", err).WithFile(path)
	}
	return nil
}

// WriteJSON writes data as indented JSON to name inside the output
// directory.
func (w *OutputWriter) WriteJSON(name string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return w.WriteFile(name, jsonData)
}

// CopyResources copies every file under the source directory that is
// neither skipped nor ignored, keeping relative paths. It returns the
// copied paths, slash separated and sorted.
func (w *OutputWriter) CopyResources() ([]string, error) {
	if _, err := os.Stat(w.sourceDir); os.IsNotExist(err) {
		return nil, nil
	}

	outAbs, _ := filepath.Abs(w.outputDir)
	var copied []string

	err := filepath.WalkDir(w.sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(w.sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if abs, _ := filepath.Abs(path); abs == outAbs {
				return filepath.SkipDir
			}
			if w.skip[rel] || w.ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.skip[rel] || w.ignored(rel) || !d.Type().IsRegular() {
			return nil
		}

		if err := copyFile(path, filepath.Join(w.outputDir, filepath.FromSlash(rel))); err != nil {
			return err
		}
		copied = append(copied, rel)
		return nil
	})
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileWrite, "copying resources", err).WithFile(w.sourceDir)
	}

	sort.Strings(copied)
	return copied, nil
}

func (w *OutputWriter) ignored(rel string) bool {
	for _, pattern := range w.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func copyFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0644)
}
