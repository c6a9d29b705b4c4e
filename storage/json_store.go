package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"apartment-watcher/models"
)

// JSONStore keeps the listing state in a single indented JSON array on disk.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by the file at path. The file is not
// touched until Load or Save is called.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Init writes an empty state file if none exists yet. It reports whether a
// file was created.
func (s *JSONStore) Init() (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("json: stat %q: %w", s.path, err)
	}

	if err := s.Save(context.Background(), []models.Listing{}); err != nil {
		return false, err
	}
	return true, nil
}

// Load reads and decodes the state file. A missing, unreadable, or malformed
// file yields models.ErrCorruptState.
func (s *JSONStore) Load(_ context.Context) ([]models.Listing, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: json: read %q: %v", models.ErrCorruptState, s.path, err)
	}

	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("%w: json: decode %q: %v", models.ErrCorruptState, s.path, err)
	}
	if listings == nil {
		return nil, fmt.Errorf("%w: json: %q does not hold a listing array", models.ErrCorruptState, s.path)
	}
	return listings, nil
}

// Save overwrites the state file with the full listing sequence. The new
// content goes to a temp file in the same directory which is then renamed
// over the old one, so a failed write leaves the previous state intact.
func (s *JSONStore) Save(_ context.Context, listings []models.Listing) error {
	if listings == nil {
		listings = []models.Listing{}
	}

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: json: encode: %v", models.ErrPersistence, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: json: create temp file in %q: %v", models.ErrPersistence, dir, err)
	}
	tmpName := tmp.Name()
	_ = tmp.Chmod(0644)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: json: write %q: %v", models.ErrPersistence, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: json: close %q: %v", models.ErrPersistence, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: json: replace %q: %v", models.ErrPersistence, s.path, err)
	}
	return nil
}

// Close is a no-op; the file is opened per call.
func (s *JSONStore) Close() error {
	return nil
}
