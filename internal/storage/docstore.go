package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DocStore reads and writes individual JSON records under a base directory.
// It knows nothing about narrative semantics; locations are relative paths
// like "library/patterns/heroes_journey.json". I/O failures propagate to
// the caller unmodified; there is no retry.
type DocStore struct {
	baseDir string
}

// Open creates the base directory layout and returns a store rooted there.
func Open(baseDir string) (*DocStore, error) {
	for _, sub := range []string{
		"projects",
		filepath.Join("library", "patterns"),
		filepath.Join("library", "archetypes"),
		filepath.Join("library", "symbols"),
	} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", sub, err)
		}
	}
	return &DocStore{baseDir: baseDir}, nil
}

// BaseDir returns the store's root directory.
func (s *DocStore) BaseDir() string {
	return s.baseDir
}

// Abs returns the absolute path for a store-relative location.
func (s *DocStore) Abs(rel string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(rel))
}

// Write marshals v as indented JSON to the given location, creating parent
// directories as needed, and returns the location.
func (s *DocStore) Write(rel string, v any) (string, error) {
	path := s.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", rel, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", rel, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	return rel, nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place, so a reader never observes a partially written record. Temp
// files have no .json suffix and are invisible to List.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriteText writes a plain text file (project notes and the like).
func (s *DocStore) WriteText(rel, text string) error {
	path := s.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", rel, err)
	}
	if err := writeAtomic(path, []byte(text)); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// Read unmarshals the record at the given location into v. A missing file
// surfaces as fs.ErrNotExist for callers to translate.
func (s *DocStore) Read(rel string, v any) error {
	data, err := os.ReadFile(s.Abs(rel))
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", rel, err)
	}
	return nil
}

// Exists reports whether a record is present at the location.
func (s *DocStore) Exists(rel string) bool {
	_, err := os.Stat(s.Abs(rel))
	return err == nil
}

// List returns the sorted stems of all JSON records directly under the
// given directory. A missing directory yields an empty list.
func (s *DocStore) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(s.Abs(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var stems []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		stems = append(stems, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(stems)
	return stems, nil
}

// ListDirs returns the sorted names of subdirectories under dir.
func (s *DocStore) ListDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(s.Abs(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// NotExist reports whether err is a missing-file read failure.
func NotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
