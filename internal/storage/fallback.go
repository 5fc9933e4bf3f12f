package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/prosper/internal/logger"
	"github.com/julianstephens/prosper/internal/models"
)

// Fallback pairs a primary (usually cloud) provider with a local one. Reads
// come from the primary and degrade to the local store on error. Writes go to
// both stores; when the primary write fails the local write decides success.
// A primary that fails to Init or Load switches the coordinator into degraded
// mode, where only the local store is used.
type Fallback struct {
	Primary Provider
	Local   Provider

	mu       sync.RWMutex
	degraded bool
}

var (
	_ Provider  = (*Fallback)(nil)
	_ MetaStore = (*Fallback)(nil)
)

func NewFallback(primary, local Provider) *Fallback {
	return &Fallback{Primary: primary, Local: local}
}

// Degraded reports whether the primary has been given up on.
func (f *Fallback) Degraded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.degraded
}

func (f *Fallback) degrade(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.degraded {
		logger.Warn("primary storage unavailable, using local store", "op", op, "primary", f.Primary.GetConfigPath(), "error", err)
	}
	f.degraded = true
}

func (f *Fallback) Init(ctx context.Context) error {
	if err := f.Local.Init(ctx); err != nil {
		return err
	}
	if err := f.Primary.Init(ctx); err != nil {
		f.degrade("init", err)
	}
	return nil
}

func (f *Fallback) Load(ctx context.Context) error {
	if err := f.Local.Load(ctx); err != nil {
		return err
	}
	if err := f.Primary.Load(ctx); err != nil {
		f.degrade("load", err)
	}
	return nil
}

func (f *Fallback) Close() error {
	return errors.Join(f.Primary.Close(), f.Local.Close())
}

func (f *Fallback) GetConfigPath() string {
	if f.Degraded() {
		return f.Local.GetConfigPath()
	}
	return f.Primary.GetConfigPath()
}

// read returns the primary's result unless degraded or failing.
// ErrNotFound from the primary is an answer, not a failure.
func read[T any](f *Fallback, op string, load func(Provider) (T, error)) (T, error) {
	if !f.Degraded() {
		v, err := load(f.Primary)
		if err == nil || errors.Is(err, ErrNotFound) {
			return v, err
		}
		logger.Warn("primary read failed, reading local store", "op", op, "error", err)
	}
	return load(f.Local)
}

// write applies fn to the local store and, unless degraded, to the primary.
// Success on either side is success.
func (f *Fallback) write(op string, fn func(Provider) error) error {
	localErr := fn(f.Local)
	if f.Degraded() {
		return localErr
	}

	primaryErr := fn(f.Primary)
	switch {
	case primaryErr == nil:
		if localErr != nil {
			logger.Warn("local mirror write failed", "op", op, "error", localErr)
		}
		return nil
	case localErr == nil:
		logger.Warn("primary write failed, kept local copy", "op", op, "error", primaryErr)
		return nil
	default:
		return primaryErr
	}
}

func (f *Fallback) LoadHabits(ctx context.Context) ([]models.Habit, error) {
	return read(f, "load habits", func(p Provider) ([]models.Habit, error) { return p.LoadHabits(ctx) })
}

func (f *Fallback) SaveHabits(ctx context.Context, habits []models.Habit) error {
	return f.write("save habits", func(p Provider) error { return p.SaveHabits(ctx, habits) })
}

func (f *Fallback) AddHabit(ctx context.Context, habit models.Habit) error {
	return f.write("add habit", func(p Provider) error { return p.AddHabit(ctx, habit) })
}

func (f *Fallback) UpdateHabit(ctx context.Context, habit models.Habit) error {
	return f.write("update habit", func(p Provider) error { return p.UpdateHabit(ctx, habit) })
}

func (f *Fallback) DeleteHabit(ctx context.Context, id string) error {
	return f.write("delete habit", func(p Provider) error { return p.DeleteHabit(ctx, id) })
}

func (f *Fallback) LoadEntries(ctx context.Context) ([]models.Entry, error) {
	return read(f, "load entries", func(p Provider) ([]models.Entry, error) { return p.LoadEntries(ctx) })
}

func (f *Fallback) SaveEntries(ctx context.Context, entries []models.Entry) error {
	return f.write("save entries", func(p Provider) error { return p.SaveEntries(ctx, entries) })
}

func (f *Fallback) AddEntry(ctx context.Context, entry models.Entry) error {
	return f.write("add entry", func(p Provider) error { return p.AddEntry(ctx, entry) })
}

func (f *Fallback) UpdateEntry(ctx context.Context, entry models.Entry) error {
	return f.write("update entry", func(p Provider) error { return p.UpdateEntry(ctx, entry) })
}

func (f *Fallback) DeleteEntry(ctx context.Context, id string) error {
	return f.write("delete entry", func(p Provider) error { return p.DeleteEntry(ctx, id) })
}

// metaOf returns p as a MetaStore, or nil.
func metaOf(p Provider) MetaStore {
	m, _ := p.(MetaStore)
	return m
}

// GetMeta reads from the primary when it keeps metadata, otherwise locally.
func (f *Fallback) GetMeta(ctx context.Context, key string) (string, error) {
	return read(f, "get meta", func(p Provider) (string, error) {
		m := metaOf(p)
		if m == nil {
			return "", errNoMeta
		}
		return m.GetMeta(ctx, key)
	})
}

func (f *Fallback) SetMeta(ctx context.Context, key, value string) error {
	return f.write("set meta", func(p Provider) error {
		m := metaOf(p)
		if m == nil {
			return errNoMeta
		}
		return m.SetMeta(ctx, key, value)
	})
}

var errNoMeta = errors.New("provider does not store metadata")
