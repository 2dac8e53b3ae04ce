package ledger

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoLedger is returned by Load when nothing has been recorded.
var ErrNoLedger = errors.New("no ledger")

// Store persists a Registry between a launch and a later stop.
type Store interface {
	Load() (Registry, error)
	Save(Registry) error
	Clear() error
}

// FileStore keeps the registry in a ledger file. There is no locking: a project is
// expected to be driven by one launcher or reaper at a time.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (Registry, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoLedger
		}
		return nil, errors.Wrap(err, "read ledger")
	}
	return Decode(bytes.NewReader(b))
}

// Save overwrites the ledger. An empty registry removes the file instead, so a launch
// where every service failed leaves nothing behind to stop.
func (s *FileStore) Save(reg Registry) error {
	b := Encode(reg)
	if len(b) == 0 {
		return s.Clear()
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return errors.Wrap(err, "mkdir ledger dir")
	}
	if err := os.WriteFile(s.Path, b, 0o644); err != nil {
		return errors.Wrap(err, "write ledger")
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "remove ledger")
	}
	return nil
}

// MemoryStore hands a registry from a launcher to a reaper within one process.
type MemoryStore struct {
	mu  sync.Mutex
	reg Registry
	set bool
}

func (s *MemoryStore) Load() (Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrNoLedger
	}
	return append(Registry{}, s.reg...), nil
}

func (s *MemoryStore) Save(reg Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(reg) == 0 {
		s.reg, s.set = nil, false
		return nil
	}
	s.reg, s.set = append(Registry{}, reg...), true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg, s.set = nil, false
	return nil
}
