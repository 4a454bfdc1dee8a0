package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/moby/sys/atomicwriter"
)

var (
	ErrStorageRead  = errors.New("storage read error")
	ErrStorageWrite = errors.New("storage write error")
)

const filePerm = 0o644

// File is a JSON snapshot of type T stored at a single path.
type File[T any] struct {
	mu   sync.RWMutex
	path string
	init func(*T) // fills in empty collections after a load
}

// NewFile creates a File for path. init may be nil.
func NewFile[T any](path string, init func(*T)) *File[T] {
	if init == nil {
		init = func(*T) {}
	}
	return &File[T]{path: path, init: init}
}

// Path returns the location of the snapshot on disk.
func (f *File[T]) Path() string {
	return f.path
}

// Load reads the snapshot. A missing file yields the empty snapshot.
func (f *File[T]) Load() (T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.read()
}

// Save replaces the whole snapshot.
func (f *File[T]) Save(v T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(v)
}

// View loads the snapshot under the read lock and passes it to fn.
func (f *File[T]) View(fn func(T) error) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, err := f.read()
	if err != nil {
		return err
	}
	return fn(v)
}

// Update runs a load-modify-save cycle under the write lock. The snapshot is
// written back only when fn reports a change and returns no error.
func (f *File[T]) Update(fn func(*T) (bool, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, err := f.read()
	if err != nil {
		return err
	}
	changed, err := fn(&v)
	if err != nil || !changed {
		return err
	}
	return f.write(v)
}

// CopyTo writes the current snapshot document to w.
func (f *File[T]) CopyTo(w io.Writer) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	src, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		var v T
		f.init(&v)
		data, err := encode(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrStorageRead, err)
		}
		n, err := w.Write(data)
		return int64(n), err
	}
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %w", ErrStorageRead, f.path, err)
	}
	defer src.Close()
	return io.Copy(w, src)
}

func (f *File[T]) read() (T, error) {
	var v T
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.init(&v)
			return v, nil
		}
		return v, fmt.Errorf("%w: read %s: %w", ErrStorageRead, f.path, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: decode %s: %w", ErrStorageRead, f.path, err)
	}
	f.init(&v)
	return v, nil
}

func (f *File[T]) write(v T) error {
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrStorageWrite, f.path, err)
	}
	if err := atomicwriter.WriteFile(f.path, data, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrStorageWrite, f.path, err)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
