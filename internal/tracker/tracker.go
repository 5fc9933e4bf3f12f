// Package tracker applies user actions to the catalog and history and keeps
// them in the configured store.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/effects"
	"github.com/julianstephens/prosper/internal/logger"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/scheduler"
	"github.com/julianstephens/prosper/internal/stats"
	"github.com/julianstephens/prosper/internal/storage"
	"github.com/julianstephens/prosper/internal/streak"
	"github.com/julianstephens/prosper/internal/utils"
	"github.com/julianstephens/prosper/internal/validation"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrEntryNotFound = errors.New("entry not found")
	ErrInvalid       = errors.New("invalid input")
	ErrAmbiguous     = errors.New("habit reference is ambiguous")
)

// Tracker serializes load-modify-save cycles against one store.
type Tracker struct {
	mu     *sync.Mutex
	store  storage.Provider
	sched  *scheduler.Scheduler
	cal    utils.Calendar
	effect effects.Trigger
	newID  func() string
}

func New(store storage.Provider, sched *scheduler.Scheduler, effect effects.Trigger) *Tracker {
	if effect == nil {
		effect = effects.Noop{}
	}
	return &Tracker{
		mu:     &sync.Mutex{},
		store:  store,
		sched:  sched,
		cal:    sched.Calendar(),
		effect: effect,
		newID:  func() string { return uuid.NewString() },
	}
}

func (t *Tracker) Calendar() utils.Calendar {
	return t.cal
}

func (t *Tracker) Store() storage.Provider {
	return t.store
}

func (t *Tracker) Effect() effects.Trigger {
	return t.effect
}

// WithEffect returns a tracker over the same store and lock that fires effect
// on completions instead.
func (t *Tracker) WithEffect(effect effects.Trigger) *Tracker {
	if effect == nil {
		effect = effects.Noop{}
	}
	c := *t
	c.effect = effect
	return &c
}

func (t *Tracker) habitID() string {
	return constants.HabitIDPrefix + t.newID()
}

// Snapshot loads the catalog and the history together.
func (t *Tracker) Snapshot(ctx context.Context) ([]models.Habit, []models.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(ctx)
}

func (t *Tracker) snapshot(ctx context.Context) ([]models.Habit, []models.Entry, error) {
	habits, err := t.store.LoadHabits(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load habits: %w", err)
	}
	entries, err := t.store.LoadEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return habits, entries, nil
}

// InitializeHabits seeds the default catalog when the store has no habits
// and returns the catalog.
func (t *Tracker) InitializeHabits(ctx context.Context) ([]models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	habits, err := t.store.LoadHabits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	if len(habits) > 0 {
		return habits, nil
	}

	habits = t.defaultCatalog()
	if err := t.store.SaveHabits(ctx, habits); err != nil {
		return nil, fmt.Errorf("failed to save default habits: %w", err)
	}
	logger.Info("seeded default habits", "count", len(habits))
	return habits, nil
}

// RestoreDefaults replaces the whole catalog with the defaults. Entries of
// the removed habits are kept.
func (t *Tracker) RestoreDefaults(ctx context.Context) ([]models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	habits := t.defaultCatalog()
	if err := t.store.SaveHabits(ctx, habits); err != nil {
		return nil, fmt.Errorf("failed to restore default habits: %w", err)
	}
	return habits, nil
}

func (t *Tracker) Habits(ctx context.Context) ([]models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.LoadHabits(ctx)
}

// FindHabit resolves ref as an id, then as a case-insensitive name, then as a
// unique name prefix.
func (t *Tracker) FindHabit(ctx context.Context, ref string) (models.Habit, error) {
	habits, err := t.Habits(ctx)
	if err != nil {
		return models.Habit{}, err
	}
	return findHabit(habits, ref)
}

func findHabit(habits []models.Habit, ref string) (models.Habit, error) {
	if i := slices.IndexFunc(habits, func(h models.Habit) bool { return h.ID == ref }); i >= 0 {
		return habits[i], nil
	}

	want := strings.ToLower(strings.TrimSpace(ref))
	if want == "" {
		return models.Habit{}, fmt.Errorf("%w: empty reference", ErrHabitNotFound)
	}
	var exact, prefix []models.Habit
	for _, h := range habits {
		name := strings.ToLower(h.Name)
		switch {
		case name == want:
			exact = append(exact, h)
		case strings.HasPrefix(name, want):
			prefix = append(prefix, h)
		}
	}
	for _, matches := range [][]models.Habit{exact, prefix} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return models.Habit{}, fmt.Errorf("%w: %q matches %d habits", ErrAmbiguous, ref, len(matches))
		}
	}
	return models.Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, ref)
}

func (t *Tracker) getHabit(ctx context.Context, id string) (models.Habit, []models.Habit, error) {
	habits, err := t.store.LoadHabits(ctx)
	if err != nil {
		return models.Habit{}, nil, fmt.Errorf("failed to load habits: %w", err)
	}
	i := slices.IndexFunc(habits, func(h models.Habit) bool { return h.ID == id })
	if i < 0 {
		return models.Habit{}, habits, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}
	return habits[i], habits, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// AddHabit creates a habit from draft. Without an explicit order the habit
// sorts before every existing one.
func (t *Tracker) AddHabit(ctx context.Context, draft models.HabitDraft) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := models.Habit{
		ID:            t.habitID(),
		Name:          strings.TrimSpace(draft.Name),
		Description:   draft.Description,
		Category:      draft.Category,
		Periodicity:   draft.Periodicity,
		DaysOfWeek:    draft.DaysOfWeek,
		TargetDate:    draft.TargetDate,
		IsPinned:      draft.IsPinned,
		IsBeforeSleep: draft.IsBeforeSleep,
		Order:         draft.Order,
		UnitType:      draft.UnitType,
		MinThreshold:  draft.MinThreshold,
		Tags:          draft.Tags,
		CreatedAt:     t.cal.Now(),
	}
	if h.Periodicity == "" {
		h.Periodicity = models.PeriodicityRecurring
	}
	if err := validation.ValidateHabit(h); err != nil {
		return models.Habit{}, invalid(err)
	}

	if !h.Order.IsSet() {
		habits, err := t.store.LoadHabits(ctx)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to load habits: %w", err)
		}
		h.Order = models.Some(nextTopOrder(habits))
	}

	if err := t.store.AddHabit(ctx, h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}
	return h, nil
}

// nextTopOrder is one less than min(0, every existing order).
func nextTopOrder(habits []models.Habit) int {
	lowest := 0
	for _, h := range habits {
		lowest = min(lowest, h.Order.OrElse(0))
	}
	return lowest - 1
}

func (t *Tracker) UpdateHabit(ctx context.Context, id string, patch models.HabitPatch) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, _, err := t.getHabit(ctx, id)
	if err != nil {
		return models.Habit{}, err
	}
	updated := patch.Apply(current)
	if name, ok := patch.Name.Get(); ok {
		updated.Name = strings.TrimSpace(name)
	}
	if err := validation.ValidateHabit(updated); err != nil {
		return models.Habit{}, invalid(err)
	}
	if err := t.store.UpdateHabit(ctx, updated); err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	return updated, nil
}

// DeleteHabit removes the habit. Its entries stay in the history.
func (t *Tracker) DeleteHabit(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.store.DeleteHabit(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}
	return err
}

func (t *Tracker) TogglePin(ctx context.Context, id string) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, _, err := t.getHabit(ctx, id)
	if err != nil {
		return models.Habit{}, err
	}
	h.IsPinned = !h.IsPinned
	if err := t.store.UpdateHabit(ctx, h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

// ToggleResult reports what ToggleEntry did.
type ToggleResult struct {
	Added   bool
	Removed bool
	Entry   models.Entry
}

// Changed is false when the toggle was a no-op.
func (r ToggleResult) Changed() bool {
	return r.Added || r.Removed
}

// ToggleEntry completes habitID on day, or undoes the completion when one
// exists. Completing a once habit is one-way: after its first entry anywhere
// the toggle does nothing.
func (t *Tracker) ToggleEntry(ctx context.Context, habitID, day string) (ToggleResult, error) {
	if err := utils.ValidateISO(day); err != nil {
		return ToggleResult{}, invalid(err)
	}

	res, done, err := t.toggle(ctx, habitID, day)
	if err != nil || !res.Added {
		return res, err
	}
	// Effects may block on I/O, so they run after the lock is released.
	t.effect.Fire(ctx, done)
	return res, nil
}

func (t *Tracker) toggle(ctx context.Context, habitID, day string) (ToggleResult, effects.Completion, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, _, err := t.getHabit(ctx, habitID)
	if err != nil {
		return ToggleResult{}, effects.Completion{}, err
	}
	entries, err := t.store.LoadEntries(ctx)
	if err != nil {
		return ToggleResult{}, effects.Completion{}, fmt.Errorf("failed to load entries: %w", err)
	}

	if h.EffectivePeriodicity() == models.PeriodicityOnce {
		if i := slices.IndexFunc(entries, func(e models.Entry) bool { return e.HabitID == h.ID }); i >= 0 {
			return ToggleResult{Entry: entries[i]}, effects.Completion{}, nil
		}
	} else if i := slices.IndexFunc(entries, func(e models.Entry) bool { return e.HabitID == h.ID && e.DateISO == day }); i >= 0 {
		if err := t.store.DeleteEntry(ctx, entries[i].ID); err != nil {
			return ToggleResult{}, effects.Completion{}, fmt.Errorf("failed to delete entry: %w", err)
		}
		return ToggleResult{Removed: true, Entry: entries[i]}, effects.Completion{}, nil
	}

	entry := models.Entry{
		ID:               t.newID(),
		HabitID:          h.ID,
		DateISO:          day,
		Timestamp:        t.cal.Now(),
		CategorySnapshot: h.Category,
	}
	if err := t.store.AddEntry(ctx, entry); err != nil {
		return ToggleResult{}, effects.Completion{}, fmt.Errorf("failed to add entry: %w", err)
	}
	return ToggleResult{Added: true, Entry: entry}, effects.Completion{
		HabitID:   h.ID,
		HabitName: h.Name,
		Category:  h.Category,
		DateISO:   day,
	}, nil
}

func (t *Tracker) Entries(ctx context.Context) ([]models.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.LoadEntries(ctx)
}

func (t *Tracker) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error) {
	if day, ok := patch.DateISO.Get(); ok {
		if err := utils.ValidateISO(day); err != nil {
			return models.Entry{}, invalid(err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.store.LoadEntries(ctx)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to load entries: %w", err)
	}
	i := slices.IndexFunc(entries, func(e models.Entry) bool { return e.ID == id })
	if i < 0 {
		return models.Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	updated := patch.Apply(entries[i])
	if err := t.store.UpdateEntry(ctx, updated); err != nil {
		return models.Entry{}, fmt.Errorf("failed to update entry: %w", err)
	}
	return updated, nil
}

func (t *Tracker) DeleteEntry(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.store.DeleteEntry(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return err
}

// ResolveDay turns "today", "yesterday", "tomorrow" or an ISO date into an ISO date.
func (t *Tracker) ResolveDay(ref string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "", "today":
		return t.cal.Today(), nil
	case "yesterday":
		return t.cal.AddDays(t.cal.Today(), -1), nil
	case "tomorrow":
		return t.cal.AddDays(t.cal.Today(), 1), nil
	}
	if err := utils.ValidateISO(ref); err != nil {
		return "", invalid(err)
	}
	return ref, nil
}

// Day builds the view of one day.
func (t *Tracker) Day(ctx context.Context, day string) (stats.DayView, error) {
	if err := utils.ValidateISO(day); err != nil {
		return stats.DayView{}, invalid(err)
	}
	habits, entries, err := t.Snapshot(ctx)
	if err != nil {
		return stats.DayView{}, err
	}
	return stats.BuildDay(t.sched, habits, entries, day), nil
}

func (t *Tracker) Streak(ctx context.Context) (models.StreakInfo, error) {
	entries, err := t.Entries(ctx)
	if err != nil {
		return models.StreakInfo{}, err
	}
	return streak.Calculate(entries, t.cal), nil
}

func (t *Tracker) History(ctx context.Context) ([]models.DaySummary, error) {
	habits, entries, err := t.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return stats.History(habits, entries), nil
}

func (t *Tracker) Summary(ctx context.Context) (models.Summary, error) {
	habits, entries, err := t.Snapshot(ctx)
	if err != nil {
		return models.Summary{}, err
	}
	return stats.Summarize(habits, entries, streak.Level(entries, t.cal)), nil
}

// Validate checks the stored catalog and history.
func (t *Tracker) Validate(ctx context.Context) (validation.Result, error) {
	habits, entries, err := t.Snapshot(ctx)
	if err != nil {
		return validation.Result{}, err
	}
	return validation.ValidateCatalog(habits, entries), nil
}
