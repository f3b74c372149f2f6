package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cinehall/cinema-booking/internal/model"
)

// FileStore keeps snapshots as pretty-printed JSON files in a directory,
// the same shape the original desk system wrote.  A missing file loads as
// an empty collection; a corrupt file is logged and also loads as empty
// rather than taking the service down — data loss is bounded by the next
// successful save, which rewrites the whole snapshot.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

const (
	bookingsFile = "bookings.json"
	catalogFile  = "inventory.json"
)

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) LoadReservations(_ context.Context) ([]*model.Reservation, error) {
	var out []*model.Reservation
	if err := s.load(bookingsFile, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*model.Reservation{}
	}
	return out, nil
}

func (s *FileStore) SaveReservations(_ context.Context, reservations []*model.Reservation) error {
	return s.save(bookingsFile, reservations)
}

func (s *FileStore) LoadCatalog(_ context.Context) ([]model.ConcessionItem, error) {
	var out []model.ConcessionItem
	if err := s.load(catalogFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileStore) SaveCatalog(_ context.Context, items []model.ConcessionItem) error {
	return s.save(catalogFile, items)
}

// load reads one snapshot file into dst.  Absent and empty files leave
// dst untouched.  A file that exists but fails to parse is treated as
// absent after a warning; the broken bytes stay on disk until the next
// save replaces them.
func (s *FileStore) load(name string, dst any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("snapshot file is corrupt, starting empty",
			zap.String("file", path), zap.Error(err))
		return nil
	}
	return nil
}

// save writes the snapshot through a temp file and rename so a crash
// mid-write never leaves a half-written snapshot behind.
func (s *FileStore) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
