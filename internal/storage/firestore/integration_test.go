package firestore

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/storage"
)

// setupEmulatorStore connects to the emulator named by FIRESTORE_EMULATOR_HOST
// under a fresh user id.
func setupEmulatorStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	s := New(Config{ProjectID: "prosper-test", UserID: "test-" + uuid.NewString()})
	if err := s.Init(t.Context()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEmulatorHabits(t *testing.T) {
	s := setupEmulatorStore(t)
	ctx := t.Context()
	now := time.Now().UTC().Truncate(time.Millisecond)

	first := models.Habit{ID: "habit-a", Name: "A", Category: models.CategoryBody, CreatedAt: now}
	second := models.Habit{ID: "habit-b", Name: "B", Category: models.CategoryMind, DaysOfWeek: []int{}, CreatedAt: now}
	if err := s.AddHabit(ctx, first); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}
	if err := s.AddHabit(ctx, second); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}

	habits, err := s.LoadHabits(ctx)
	if err != nil {
		t.Fatalf("LoadHabits() error = %v", err)
	}
	if len(habits) != 2 || habits[0].ID != "habit-a" || habits[1].ID != "habit-b" {
		t.Fatalf("LoadHabits() = %+v, want insertion order", habits)
	}
	if habits[1].DaysOfWeek == nil {
		t.Error("empty weekday set read back as nil")
	}

	first.Name = "A2"
	if err := s.UpdateHabit(ctx, first); err != nil {
		t.Fatalf("UpdateHabit() error = %v", err)
	}
	if err := s.UpdateHabit(ctx, models.Habit{ID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateHabit(missing) = %v, want ErrNotFound", err)
	}
	if err := s.DeleteHabit(ctx, "habit-b"); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}
	if err := s.DeleteHabit(ctx, "habit-b"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteHabit() = %v, want ErrNotFound", err)
	}

	if err := s.SaveHabits(ctx, []models.Habit{second, first}); err != nil {
		t.Fatalf("SaveHabits() error = %v", err)
	}
	habits, _ = s.LoadHabits(ctx)
	if len(habits) != 2 || habits[0].ID != "habit-b" {
		t.Errorf("SaveHabits order not kept: %+v", habits)
	}
}

func TestEmulatorEntriesAndMeta(t *testing.T) {
	s := setupEmulatorStore(t)
	ctx := t.Context()

	e := models.Entry{ID: "e1", HabitID: "habit-a", DateISO: "2024-01-17", Timestamp: time.Now().UTC(), CategorySnapshot: models.CategoryBody}
	if err := s.AddEntry(ctx, e); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}
	e.DateISO = "2024-01-16"
	if err := s.UpdateEntry(ctx, e); err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	entries, err := s.LoadEntries(ctx)
	if err != nil || len(entries) != 1 || entries[0].DateISO != "2024-01-16" {
		t.Fatalf("LoadEntries() = %+v, %v", entries, err)
	}
	if err := s.SaveEntries(ctx, nil); err != nil {
		t.Fatalf("SaveEntries() error = %v", err)
	}
	if entries, _ := s.LoadEntries(ctx); len(entries) != 0 {
		t.Errorf("SaveEntries(nil) left %d entries", len(entries))
	}

	if _, err := s.GetMeta(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetMeta(missing) = %v, want ErrNotFound", err)
	}
	if err := s.SetMeta(ctx, "k", "v"); err != nil {
		t.Fatalf("SetMeta() error = %v", err)
	}
	if v, err := s.GetMeta(ctx, "k"); err != nil || v != "v" {
		t.Errorf("GetMeta() = %q, %v", v, err)
	}
}
