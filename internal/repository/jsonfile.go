package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// jsonFile is a JSON array persisted as a whole file. Every access holds the
// mutex, so a read-modify-write cycle never interleaves with another one in
// the same process. Writes go to a temp file that is renamed over the
// original.
type jsonFile[T any] struct {
	mu   sync.Mutex
	path string
}

func newJSONFile[T any](path string) *jsonFile[T] {
	return &jsonFile[T]{path: path}
}

// load returns the current contents.
func (f *jsonFile[T]) load() ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// update runs fn on the current contents and saves the result unless fn
// returns an error, in which case the file is left untouched.
func (f *jsonFile[T]) update(fn func(items *[]T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return err
	}
	if err := fn(&items); err != nil {
		return err
	}
	return f.write(items)
}

// read initialises the file with an empty array when it does not exist.
func (f *jsonFile[T]) read() ([]T, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := f.write([]T{}); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, f.path, err)
	}
	items := []T{}
	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorage, f.path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (f *jsonFile[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorage, f.path, err)
	}
	return writeFileAtomic(f.path, data)
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrStorage, dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrStorage, path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrStorage, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrStorage, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %v", ErrStorage, path, err)
	}
	return nil
}
