// Package storage keeps the client's durable key/value entries in a
// single JSON file. It plays the role browser local storage plays for a
// web client: small string entries that survive restarts.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// LocalStorage is a file-backed string map. Mutations are in memory until
// Save is called.
type LocalStorage struct {
	Entries map[string]string `json:"entries"`

	path string
	mu   sync.Mutex
}

// New returns a storage bound to path. Nothing is read until Load.
func New(path string) *LocalStorage {
	return &LocalStorage{path: path, Entries: make(map[string]string)}
}

// Path returns the backing file.
func (ls *LocalStorage) Path() string {
	return ls.path
}

// Load replaces the in-memory entries with the file's content. A missing
// file is an empty storage. A file that fails to parse leaves the storage
// empty and returns the parse error.
func (ls *LocalStorage) Load() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.Entries = make(map[string]string)
	f, err := os.Open(ls.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open storage: %w", err)
	}
	defer f.Close()

	var onDisk struct {
		Entries map[string]string `json:"entries"`
	}
	if err := json.NewDecoder(f).Decode(&onDisk); err != nil {
		return fmt.Errorf("decode storage %s: %w", ls.path, err)
	}
	for k, v := range onDisk.Entries {
		ls.Entries[k] = v
	}
	return nil
}

// Save writes the entries to disk. The file is replaced atomically and is
// readable by the owner only, since it holds a credential.
func (ls *LocalStorage) Save() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	dir := filepath.Dir(ls.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return fmt.Errorf("create temp storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(ls); err != nil {
		tmp.Close()
		return fmt.Errorf("encode storage: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), ls.path); err != nil {
		return fmt.Errorf("replace storage: %w", err)
	}
	return nil
}

// Get returns the entry for key.
func (ls *LocalStorage) Get(key string) (string, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	v, ok := ls.Entries[key]
	return v, ok
}

// Set stores value under key.
func (ls *LocalStorage) Set(key, value string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.Entries == nil {
		ls.Entries = make(map[string]string)
	}
	ls.Entries[key] = value
}

// Remove deletes key. Removing a missing key is a no-op.
func (ls *LocalStorage) Remove(key string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	delete(ls.Entries, key)
}

// Keys returns the stored keys in sorted order.
func (ls *LocalStorage) Keys() []string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	keys := make([]string, 0, len(ls.Entries))
	for k := range ls.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
