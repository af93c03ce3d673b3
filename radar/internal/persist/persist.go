// CLAUDE:SUMMARY Per-catalog JSON document store: atomic replace-on-success writes confined to the data directory.
// Package persist reads and writes catalog snapshots as JSON files.
//
// Each catalog file is the catalog's only durable state. Writes go to a
// temporary file in the same directory and are renamed over the target, so
// readers see either the previous document or the new one, never a mix.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"

	"github.com/hazyhaar/radar/horosafe"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Store is a directory of JSON documents.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the confined path of a document.
func (s *Store) Path(name string) (string, error) {
	p, err := horosafe.SafePath(s.Dir, name)
	if err != nil {
		return "", fmt.Errorf("persist: %s: %w", name, err)
	}
	return p, nil
}

// Load decodes the document into v. A missing file is not an error: found
// is false and v is left untouched.
func (s *Store) Load(name string, v any) (found bool, err error) {
	p, err := s.Path(name)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("persist: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("persist: decode %s: %w", name, err)
	}
	return true, nil
}

// Save encodes v as 2-space indented JSON with a trailing newline and
// atomically replaces the document.
func (s *Store) Save(name string, v any) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encode %s: %w", name, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.Dir, dirPerms); err != nil {
		return fmt.Errorf("persist: mkdir %s: %w", s.Dir, err)
	}
	if err := atomic.WriteFile(p, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("persist: write %s: %w", name, err)
	}
	// atomic.WriteFile keeps the temp file's 0600 mode for new files.
	if err := os.Chmod(p, filePerms); err != nil {
		return fmt.Errorf("persist: chmod %s: %w", name, err)
	}
	return nil
}
