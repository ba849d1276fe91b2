// Package globalconfig is the persisted settings store shared by every
// view of the base: which table, view, done field and priority field the
// to-do list uses. Values live in a small TOML file.
package globalconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

type Key string

const (
	SelectedTable         Key = "selectedTableId"
	SelectedView          Key = "selectedViewId"
	SelectedDoneField     Key = "selectedDoneFieldId"
	SelectedPriorityField Key = "selectedPriorityFieldId"
)

// Keys lists the settings in picker order.
var Keys = []Key{SelectedTable, SelectedView, SelectedDoneField, SelectedPriorityField}

type Store struct {
	path string

	mu       sync.RWMutex
	values   map[Key]string
	watchers map[int]chan Key
	nextID   int
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path:     path,
		values:   make(map[Key]string),
		watchers: make(map[int]chan Key),
	}
	values, err := readFile(path)
	if err != nil {
		return nil, err
	}
	s.values = values
	return s, nil
}

func readFile(path string) (map[Key]string, error) {
	values := make(map[Key]string)
	if path == "" {
		return values, nil
	}
	var raw map[string]string
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("read global config: %w", err)
	}
	for k, v := range raw {
		values[Key(k)] = v
	}
	return values, nil
}

func (s *Store) Path() string { return s.path }

// Get returns "" for unset keys.
func (s *Store) Get(key Key) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set persists value under key and notifies watchers. Setting "" unsets.
func (s *Store) Set(key Key, value string) error {
	s.mu.Lock()
	if s.values[key] == value {
		s.mu.Unlock()
		return nil
	}
	prev, had := s.values[key]
	if value == "" {
		delete(s.values, key)
	} else {
		s.values[key] = value
	}
	if err := s.saveLocked(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		s.mu.Unlock()
		return err
	}
	s.notifyLocked(key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Unset(key Key) error { return s.Set(key, "") }

// Reload re-reads the file, notifying watchers of every key whose value
// changed on disk.
func (s *Store) Reload() error {
	values, err := readFile(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.values
	s.values = values
	for _, k := range Keys {
		if old[k] != values[k] {
			s.notifyLocked(k)
		}
	}
	return nil
}

// Watch registers for change notifications. The channel holds at most one
// pending key; bursts of changes coalesce, so receivers should re-read
// every key they care about. Call the returned func to stop watching.
func (s *Store) Watch() (<-chan Key, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Key, 1)
	s.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) notifyLocked(key Key) {
	for _, ch := range s.watchers {
		select {
		case ch <- key:
		default:
		}
	}
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	raw := make(map[string]string, len(s.values))
	for k, v := range s.values {
		raw[string(k)] = v
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return fmt.Errorf("encode global config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write global config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write global config: %w", err)
	}
	return nil
}
