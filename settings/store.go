// Package settings persists user preferences as a flat key-value map:
// language codes, speech rate, verbosity, and toolbar flags. The file is read
// at startup, written on every change, and watched for external edits.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Well-known settings keys.
const (
	KeySourceLang         = "source_lang"
	KeyTargetLang         = "target_lang"
	KeyRate               = "rate"
	KeyVerbosity          = "verbosity"
	KeyToolbarEnabled     = "toolbar_enabled"
	KeyFloatingTranslator = "floating_translator"
)

// Store is a persisted flat map of string, number, and boolean settings.
// There is no schema versioning; unknown keys round-trip untouched.
type Store struct {
	path string

	mu       sync.RWMutex
	values   map[string]any
	onChange func()

	watcher *fsnotify.Watcher
	logger  *log.Logger
}

// Open loads the settings file, creating an empty store when the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]any),
		logger: log.Default().With("component", "settings"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// OnChange registers a callback invoked after the file is reloaded due to an
// external edit.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Get returns the raw value for a key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns a string setting, or fallback when unset.
func (s *Store) GetString(key, fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return fallback
}

// GetFloat returns a numeric setting, or fallback when unset.
func (s *Store) GetFloat(key string, fallback float64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch v := s.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

// GetBool returns a boolean setting, or fallback when unset.
func (s *Store) GetBool(key string, fallback bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(bool); ok {
		return v
	}
	return fallback
}

// Set stores a value and persists the whole map to disk.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(snapshot)
}

// All returns a copy of every setting.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Watch starts reloading the store when the file changes on disk. Call Close
// to stop watching.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	// Watch the directory: editors and the atomic rename in persist
	// replace the file rather than writing it in place.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching settings dir: %w", err)
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.load(); err != nil {
					s.logger.Warn("reloading settings", "err", err)
					continue
				}
				s.logger.Debug("settings reloaded", "path", s.path)
				s.mu.RLock()
				fn := s.onChange
				s.mu.RUnlock()
				if fn != nil {
					fn()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("settings watcher", "err", err)
			}
		}
	}()
	return nil
}

// Close stops the file watcher.
func (s *Store) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// persist writes the settings atomically: temp file then rename.
func (s *Store) persist(values map[string]any) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}

func (s *Store) snapshotLocked() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
