package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Record is the persisted client-local state: a login flag and the signed-in
// email, written at sign-in and cleared at sign-out.
type Record struct {
	Login       string `yaml:"login"`
	CurrentUser string `yaml:"currentUser"`
}

// Store persists a Record.
type Store interface {
	Load() (Record, error)
	Save(Record) error
	Clear() error
}

// FileStore keeps the record in a YAML file readable only by the owner.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultPath returns the per-user session file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "simclient", "session.yaml"), nil
}

// Load reads the record. A missing or empty file is the zero record.
// Uses strict parsing: unrecognized keys are rejected.
func (f *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("reading session file: %w", err)
	}
	var rec Record
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rec); err != nil && !errors.Is(err, io.EOF) {
		return Record{}, fmt.Errorf("parsing session file: %w", err)
	}
	return rec, nil
}

// Save writes the record, creating the parent directory when needed.
func (f *FileStore) Save(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Clear removes the file; clearing an absent file succeeds.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// MemoryStore keeps the record in process memory (goroutine-safe).
type MemoryStore struct {
	mu     sync.Mutex
	record Record
	saves  int
}

func (m *MemoryStore) Load() (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record, nil
}

func (m *MemoryStore) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = rec
	m.saves++
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = Record{}
	m.saves++
	return nil
}

// Writes returns how many times the record was saved or cleared.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
