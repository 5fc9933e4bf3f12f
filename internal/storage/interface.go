package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/prosper/internal/models"
)

var (
	// ErrNotFound is returned when a habit, entry or metadata key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned by Load when the backing store was never created.
	ErrNotInitialized = errors.New("storage not initialized, run 'prosper init' first")
)

// Provider persists the habit catalog and the entry history.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Habits
	LoadHabits(ctx context.Context) ([]models.Habit, error)
	SaveHabits(ctx context.Context, habits []models.Habit) error
	AddHabit(ctx context.Context, habit models.Habit) error
	UpdateHabit(ctx context.Context, habit models.Habit) error
	DeleteHabit(ctx context.Context, id string) error

	// Entries
	LoadEntries(ctx context.Context) ([]models.Entry, error)
	SaveEntries(ctx context.Context, entries []models.Entry) error
	AddEntry(ctx context.Context, entry models.Entry) error
	UpdateEntry(ctx context.Context, entry models.Entry) error
	DeleteEntry(ctx context.Context, id string) error

	// Utils
	GetConfigPath() string
}

// MetaStore is implemented by providers that can keep small key/value
// metadata next to the data, such as the cloud migration marker.
type MetaStore interface {
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}
