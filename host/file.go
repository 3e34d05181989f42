package host

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the whole state map in one JSON file and rewrites it after every
// committed call. Keys are hex, values base64, since both are binary.
type FileStore struct {
	mu       sync.Mutex
	db       map[string]string
	filename string
}

func NewFileStore(filename string) *FileStore {
	if filename == "" {
		filename = "state.json"
	}
	return &FileStore{db: make(map[string]string), filename: filename}
}

// Path is the backing file.
func (s *FileStore) Path() string { return s.filename }

// Load reads the file; a missing file is an empty state.
func (s *FileStore) Load(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.db = make(map[string]string)
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", s.filename, err)
	}
	db := make(map[string]string, len(raw))
	for k, v := range raw {
		key, err := hex.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("state file key %q: %w", k, err)
		}
		val, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("state file value for %s: %w", k, err)
		}
		db[string(key)] = string(val)
	}
	s.db = db
	return maps.Clone(db), nil
}

// Apply merges the write set and rewrites the file. The in-memory copy only changes
// when the write succeeded.
func (s *FileStore) Apply(ctx context.Context, changes map[string]*string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.db)
	for k, v := range changes {
		if v == nil {
			delete(next, k)
			continue
		}
		next[k] = *v
	}
	if err := s.saveToFile(next); err != nil {
		return err
	}
	s.db = next
	return nil
}

// saveToFile writes to a temp file next to the target and renames it over.
func (s *FileStore) saveToFile(db map[string]string) error {
	raw := make(map[string]string, len(db))
	for k, v := range db {
		raw[hex.EncodeToString([]byte(k))] = base64.StdEncoding.EncodeToString([]byte(v))
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.filename), filepath.Base(s.filename)+".*")
	if err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tmp.Name(), s.filename)
}
