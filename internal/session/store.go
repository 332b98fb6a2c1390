package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Persisted is the credential state kept between runs.
type Persisted struct {
	AdminToken      string `yaml:"adminToken,omitempty"`
	RememberedEmail string `yaml:"adminRememberedEmail,omitempty"`
}

// Store loads and saves Persisted state.
type Store interface {
	Load() (Persisted, error)
	Save(Persisted) error
}

// FileStore keeps state in a YAML file readable only by the current user.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStatePath returns the per-user state file location.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "carrry-admin", "session.yaml"), nil
}

// Load reads the state file. A missing file is an empty state.
func (s *FileStore) Load() (Persisted, error) {
	var p Persisted
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return p, nil
}

// Save writes the state file, removing it when the state is empty.
func (s *FileStore) Save(p Persisted) error {
	if p == (Persisted{}) {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", s.path, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps state in memory only.
type MemoryStore struct {
	mu    sync.Mutex
	state Persisted
}

func (m *MemoryStore) Load() (Persisted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *MemoryStore) Save(p Persisted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = p
	return nil
}
