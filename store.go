package text2img_gan

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Store Named storage locations for model artifacts
type Store interface {
	Save(name string, data []byte) error
	Load(name string) ([]byte, error)
	Close() error
}

func checkArtifactName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.Wrapf(ErrPersistence, "bad artifact name '%s'", name)
	}
	return nil
}

// MemStore Keeps artifacts in process memory
type MemStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemStore Constructor for MemStore
func NewMemStore() *MemStore {
	return &MemStore{items: make(map[string][]byte)}
}

// Save Implements Store
func (ms *MemStore) Save(name string, data []byte) error {
	if err := checkArtifactName(name); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.items[name] = append([]byte(nil), data...)
	return nil
}

// Load Implements Store
func (ms *MemStore) Load(name string) ([]byte, error) {
	if err := checkArtifactName(name); err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	data, ok := ms.items[name]
	if !ok {
		return nil, errors.Wrapf(ErrPersistence, "artifact '%s' not found", name)
	}
	return append([]byte(nil), data...), nil
}

// Names Returns names of stored artifacts
func (ms *MemStore) Names() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	names := make([]string, 0, len(ms.items))
	for k := range ms.items {
		names = append(names, k)
	}
	return names
}

// Close Implements Store
func (ms *MemStore) Close() error {
	return nil
}

// DirStore Keeps every artifact as '<name>.gob' file in Dir
type DirStore struct {
	Dir string
}

// NewDirStore Constructor for DirStore. Creates directory if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, withKind(ErrPersistence, err, "Can't create model directory '%s'", dir)
	}
	return &DirStore{Dir: dir}, nil
}

func (ds *DirStore) path(name string) string {
	return filepath.Join(ds.Dir, name+".gob")
}

// Save Implements Store. File is replaced atomically.
func (ds *DirStore) Save(name string, data []byte) error {
	if err := checkArtifactName(name); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(ds.Dir, name+".*.tmp")
	if err != nil {
		return withKind(ErrPersistence, err, "Can't create temporary file for '%s'", name)
	}
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return withKind(ErrPersistence, err, "Can't write '%s'", name)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return withKind(ErrPersistence, err, "Can't write '%s'", name)
	}
	if err = os.Rename(tmp.Name(), ds.path(name)); err != nil {
		os.Remove(tmp.Name())
		return withKind(ErrPersistence, err, "Can't move '%s' in place", name)
	}
	return nil
}

// Load Implements Store
func (ds *DirStore) Load(name string) ([]byte, error) {
	if err := checkArtifactName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(ds.path(name))
	if err != nil {
		return nil, withKind(ErrPersistence, err, "Can't read '%s'", name)
	}
	return data, nil
}

// Close Implements Store
func (ds *DirStore) Close() error {
	return nil
}
