// Package prefs implements the process-wide key-value configuration store
// used to remember values across restarts, such as the last saved texture.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Store reads and writes string values by key.
// GetString returns the empty string for unknown keys.
type Store interface {
	GetString(key string) string
	SetString(key, value string) error
}

// Memory is a Store living only for the lifetime of the process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// GetString returns the value stored under key.
func (m *Memory) GetString(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// SetString stores value under key.
func (m *Memory) SetString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// File is a Store persisted as a TOML document. Every SetString rewrites the file.
type File struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// Open loads the preferences stored at path. A missing file yields an empty store
// which is created on the first write.
func Open(path string) (*File, error) {
	f := &File{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("unable to read the preferences file: %w", err)
	}
	if err := toml.Unmarshal(data, &f.values); err != nil {
		return nil, fmt.Errorf("unable to decode the preferences file %s: %w", path, err)
	}
	return f, nil
}

// Path returns the location of the preferences file.
func (f *File) Path() string {
	return f.path
}

// GetString returns the value stored under key.
func (f *File) GetString(key string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[key]
}

// SetString stores value under key and flushes the store to disk.
func (f *File) SetString(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		if existed {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

// flush writes the values atomically. Caller must hold the lock.
func (f *File) flush() error {
	data, err := toml.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("unable to encode the preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("unable to create the preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".prefs-*")
	if err != nil {
		return fmt.Errorf("unable to create the preferences file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write the preferences file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
