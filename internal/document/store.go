package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/civiclab/qualsync/pkg/models"
)

// Store is the in-memory index of the petition directory for one run. The
// directory is the single source of truth: Scan rebuilds the index from
// each file's front matter, and no index persists between runs.
//
// Store is not safe for concurrent use; qualsync is single-flow and relies
// on non-overlapping scheduling.
type Store struct {
	dir    string
	byID   map[string]string // response id -> path
	byPath map[string]string // path -> response id
}

// NewStore creates a Store over the given petitions directory. Call Scan
// before using the index.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		byID:   make(map[string]string),
		byPath: make(map[string]string),
	}
}

// Dir returns the petitions directory.
func (s *Store) Dir() string {
	return s.dir
}

// Scan creates the petitions directory if needed and indexes every
// markdown file that carries a qualtrics_response_id in its front matter.
// Files without one are left alone: they belong to someone else.
func (s *Store) Scan() error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("creating petitions dir %s: %w", s.dir, err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("scanning petitions dir %s: %w", s.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		fm, err := readFrontMatter(path)
		if err != nil || fm == nil || fm.ResponseID == "" {
			continue
		}
		s.byID[fm.ResponseID] = path
		s.byPath[path] = fm.ResponseID
	}
	return nil
}

// Lookup returns the path currently holding the given response id.
func (s *Store) Lookup(responseID string) (string, bool) {
	path, ok := s.byID[responseID]
	return path, ok
}

// OwnerOf returns the response id that owns the given path in the index.
func (s *Store) OwnerOf(path string) (string, bool) {
	id, ok := s.byPath[path]
	return id, ok
}

// Exists reports whether a file is present on disk at the given path.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Claim records that a response id now owns the given path, releasing any
// path it owned before. Later rows in the same batch probe against the
// updated state.
func (s *Store) Claim(responseID, path string) {
	if old, ok := s.byID[responseID]; ok && old != path {
		delete(s.byPath, old)
	}
	s.byID[responseID] = path
	s.byPath[path] = responseID
}

// Count returns the number of indexed documents.
func (s *Store) Count() int {
	return len(s.byID)
}

// Read returns the current bytes at path. found is false when no file
// exists there.
func (s *Store) Read(path string) (data []byte, found bool, err error) {
	data, err = os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, true, nil
}

// Write stores rendered document bytes at path.
func (s *Store) Write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Rename relocates a document and updates the index.
func (s *Store) Rename(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", oldPath, newPath, err)
	}
	if id, ok := s.byPath[oldPath]; ok {
		delete(s.byPath, oldPath)
		s.byID[id] = newPath
		s.byPath[newPath] = id
	}
	return nil
}

// readFrontMatter decodes the leading "---" block of a petition file.
// A nil FrontMatter with nil error means the file has no block.
func readFrontMatter(path string) (*models.FrontMatter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return nil, nil
	}
	end := strings.Index(text[4:], "\n---\n")
	if end == -1 {
		return nil, nil
	}

	var fm models.FrontMatter
	if err := yaml.Unmarshal([]byte(text[4:4+end]), &fm); err != nil {
		return nil, fmt.Errorf("parsing front matter of %s: %w", path, err)
	}
	return &fm, nil
}
