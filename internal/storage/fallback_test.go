package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/storage"
	"github.com/julianstephens/prosper/internal/storage/jsonstore"
)

var errOffline = errors.New("offline")

// switchable wraps a JSON store and fails every call while down is set.
type switchable struct {
	*jsonstore.Store
	down bool
}

func (s *switchable) check() error {
	if s.down {
		return errOffline
	}
	return nil
}

func (s *switchable) Init(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.Store.Init(ctx)
}

func (s *switchable) Load(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.Store.Load(ctx)
}

func (s *switchable) LoadHabits(ctx context.Context) ([]models.Habit, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.Store.LoadHabits(ctx)
}

func (s *switchable) AddHabit(ctx context.Context, h models.Habit) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.Store.AddHabit(ctx, h)
}

func (s *switchable) SaveHabits(ctx context.Context, h []models.Habit) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.Store.SaveHabits(ctx, h)
}

func (s *switchable) UpdateHabit(ctx context.Context, h models.Habit) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.Store.UpdateHabit(ctx, h)
}

func (s *switchable) AddEntry(ctx context.Context, e models.Entry) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.Store.AddEntry(ctx, e)
}

func (s *switchable) GetMeta(ctx context.Context, key string) (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	return s.Store.GetMeta(ctx, key)
}

func newJSON(t *testing.T, name string) *jsonstore.Store {
	t.Helper()
	s := jsonstore.New(filepath.Join(t.TempDir(), name))
	if err := s.Init(t.Context()); err != nil {
		t.Fatalf("Init(%s) error = %v", name, err)
	}
	return s
}

func setupFallback(t *testing.T) (*storage.Fallback, *switchable, *jsonstore.Store) {
	t.Helper()
	primary := &switchable{Store: newJSON(t, "cloud.json")}
	local := newJSON(t, "local.json")
	f := storage.NewFallback(primary, local)
	if err := f.Load(t.Context()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return f, primary, local
}

func TestFallbackMirrorsWrites(t *testing.T) {
	f, primary, local := setupFallback(t)
	ctx := t.Context()

	if err := f.AddHabit(ctx, models.Habit{ID: "h1", Name: "Walk"}); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}

	for name, p := range map[string]storage.Provider{"primary": primary.Store, "local": local} {
		habits, _ := p.LoadHabits(ctx)
		if len(habits) != 1 {
			t.Errorf("%s has %d habits, want 1", name, len(habits))
		}
	}
}

func TestFallbackPrimaryWriteFailure(t *testing.T) {
	f, primary, local := setupFallback(t)
	ctx := t.Context()

	primary.down = true
	if err := f.AddEntry(ctx, models.Entry{ID: "e1", HabitID: "h1", DateISO: "2024-01-17"}); err != nil {
		t.Fatalf("AddEntry() with primary down = %v, want local success", err)
	}
	entries, _ := local.LoadEntries(ctx)
	if len(entries) != 1 {
		t.Errorf("local has %d entries, want 1", len(entries))
	}
	if f.Degraded() {
		t.Error("a failed write should not degrade the coordinator")
	}
}

func TestFallbackReadDegradesPerCall(t *testing.T) {
	f, primary, local := setupFallback(t)
	ctx := t.Context()

	_ = primary.Store.AddHabit(ctx, models.Habit{ID: "cloud-only"})
	_ = local.AddHabit(ctx, models.Habit{ID: "local-only"})

	habits, err := f.LoadHabits(ctx)
	if err != nil || len(habits) != 1 || habits[0].ID != "cloud-only" {
		t.Fatalf("LoadHabits() = %+v, %v, want primary data", habits, err)
	}

	primary.down = true
	habits, err = f.LoadHabits(ctx)
	if err != nil || len(habits) != 1 || habits[0].ID != "local-only" {
		t.Fatalf("LoadHabits() with primary down = %+v, %v, want local data", habits, err)
	}
}

func TestFallbackLoadFailureDegrades(t *testing.T) {
	primary := &switchable{Store: newJSON(t, "cloud.json"), down: true}
	local := newJSON(t, "local.json")
	f := storage.NewFallback(primary, local)
	ctx := t.Context()

	if err := f.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v, want nil with local available", err)
	}
	if !f.Degraded() {
		t.Fatal("Degraded() = false after primary Load failure")
	}
	if got := f.GetConfigPath(); got != local.GetConfigPath() {
		t.Errorf("GetConfigPath() = %q, want local path", got)
	}

	primary.down = false
	if err := f.AddHabit(ctx, models.Habit{ID: "h1"}); err != nil {
		t.Fatal(err)
	}
	if habits, _ := primary.Store.LoadHabits(ctx); len(habits) != 0 {
		t.Error("degraded coordinator wrote to the primary")
	}
}

func TestFallbackBothFail(t *testing.T) {
	f, primary, _ := setupFallback(t)
	primary.down = true

	err := f.UpdateHabit(t.Context(), models.Habit{ID: "missing"})
	if !errors.Is(err, errOffline) {
		t.Errorf("UpdateHabit() = %v, want primary error", err)
	}
}

func TestFallbackMetaNotFoundIsAnAnswer(t *testing.T) {
	f, _, local := setupFallback(t)
	ctx := t.Context()

	_ = local.SetMeta(ctx, "k", "local")
	if _, err := f.GetMeta(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetMeta() = %v, want ErrNotFound from primary", err)
	}
}
