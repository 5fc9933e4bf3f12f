// Package jsonstore keeps the whole catalog and history in a single JSON file.
// It is the offline store the cloud backends fall back to.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/storage"
)

const fileVersion = 1

type document struct {
	Version int               `json:"version"`
	Habits  []models.Habit    `json:"habits"`
	Entries []models.Entry    `json:"entries"`
	Meta    map[string]string `json:"meta"`
}

type Store struct {
	mu   sync.Mutex
	path string
	doc  *document
}

var (
	_ storage.Provider  = (*Store)(nil)
	_ storage.MetaStore = (*Store)(nil)
)

func New(path string) *Store {
	return &Store{path: path}
}

// Init creates an empty file when none exists and loads it otherwise.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return s.read()
	}

	s.doc = &document{
		Version: fileVersion,
		Habits:  []models.Habit{},
		Entries: []models.Entry{},
		Meta:    map[string]string{},
	}
	return s.write()
}

func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Habits == nil {
		doc.Habits = []models.Habit{}
	}
	if doc.Entries == nil {
		doc.Entries = []models.Entry{}
	}
	if doc.Meta == nil {
		doc.Meta = map[string]string{}
	}
	s.doc = doc
	return nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *Store) write() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prosper-*.json")
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// locked runs fn with the document loaded, persisting it when fn reports a change.
func (s *Store) locked(fn func(doc *document) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	changed, err := fn(s.doc)
	if err != nil || !changed {
		return err
	}
	return s.write()
}

func (s *Store) LoadHabits(ctx context.Context) ([]models.Habit, error) {
	var habits []models.Habit
	err := s.locked(func(doc *document) (bool, error) {
		habits = slices.Clone(doc.Habits)
		return false, nil
	})
	return habits, err
}

func (s *Store) SaveHabits(ctx context.Context, habits []models.Habit) error {
	return s.locked(func(doc *document) (bool, error) {
		doc.Habits = slices.Clone(habits)
		if doc.Habits == nil {
			doc.Habits = []models.Habit{}
		}
		return true, nil
	})
}

// AddHabit appends a habit, replacing it in place when the id already exists.
func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	return s.locked(func(doc *document) (bool, error) {
		if i := indexHabit(doc.Habits, habit.ID); i >= 0 {
			doc.Habits[i] = habit
			return true, nil
		}
		doc.Habits = append(doc.Habits, habit)
		return true, nil
	})
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	return s.locked(func(doc *document) (bool, error) {
		i := indexHabit(doc.Habits, habit.ID)
		if i < 0 {
			return false, fmt.Errorf("habit %s: %w", habit.ID, storage.ErrNotFound)
		}
		doc.Habits[i] = habit
		return true, nil
	})
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	return s.locked(func(doc *document) (bool, error) {
		i := indexHabit(doc.Habits, id)
		if i < 0 {
			return false, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
		}
		doc.Habits = slices.Delete(doc.Habits, i, i+1)
		return true, nil
	})
}

func (s *Store) LoadEntries(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.locked(func(doc *document) (bool, error) {
		entries = slices.Clone(doc.Entries)
		return false, nil
	})
	return entries, err
}

func (s *Store) SaveEntries(ctx context.Context, entries []models.Entry) error {
	return s.locked(func(doc *document) (bool, error) {
		doc.Entries = slices.Clone(entries)
		if doc.Entries == nil {
			doc.Entries = []models.Entry{}
		}
		return true, nil
	})
}

func (s *Store) AddEntry(ctx context.Context, entry models.Entry) error {
	return s.locked(func(doc *document) (bool, error) {
		if i := indexEntry(doc.Entries, entry.ID); i >= 0 {
			doc.Entries[i] = entry
			return true, nil
		}
		doc.Entries = append(doc.Entries, entry)
		return true, nil
	})
}

func (s *Store) UpdateEntry(ctx context.Context, entry models.Entry) error {
	return s.locked(func(doc *document) (bool, error) {
		i := indexEntry(doc.Entries, entry.ID)
		if i < 0 {
			return false, fmt.Errorf("entry %s: %w", entry.ID, storage.ErrNotFound)
		}
		doc.Entries[i] = entry
		return true, nil
	})
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	return s.locked(func(doc *document) (bool, error) {
		i := indexEntry(doc.Entries, id)
		if i < 0 {
			return false, fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
		}
		doc.Entries = slices.Delete(doc.Entries, i, i+1)
		return true, nil
	})
}

func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.locked(func(doc *document) (bool, error) {
		v, ok := doc.Meta[key]
		if !ok {
			return false, fmt.Errorf("meta %s: %w", key, storage.ErrNotFound)
		}
		value = v
		return false, nil
	})
	return value, err
}

func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	return s.locked(func(doc *document) (bool, error) {
		doc.Meta[key] = value
		return true, nil
	})
}

func indexHabit(habits []models.Habit, id string) int {
	return slices.IndexFunc(habits, func(h models.Habit) bool { return h.ID == id })
}

func indexEntry(entries []models.Entry, id string) int {
	return slices.IndexFunc(entries, func(e models.Entry) bool { return e.ID == id })
}
