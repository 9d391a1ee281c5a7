package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"turfbook/internal/models"
)

// JSONSnapshot persists the booking store as a single JSON array under one
// storage key, the canonical layout. The key doubles as the file name so a
// snapshot written by any version of the system loads in any other.
type JSONSnapshot struct {
	path string
}

func NewJSONSnapshot(dir, key string) (*JSONSnapshot, error) {
	if key == "" {
		key = models.StorageKey
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &JSONSnapshot{path: filepath.Join(dir, key+".json")}, nil
}

// Path returns the backing file location.
func (s *JSONSnapshot) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file is an empty store, not an error.
func (s *JSONSnapshot) Load(ctx context.Context) ([]models.BookingRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []models.BookingRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var records []models.BookingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return records, nil
}

// Save rewrites the snapshot atomically: write to a temp file, then rename.
func (s *JSONSnapshot) Save(ctx context.Context, records []models.BookingRecord) error {
	if records == nil {
		records = []models.BookingRecord{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (s *JSONSnapshot) Close() error {
	return nil
}
