package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/logger"
	"github.com/julianstephens/prosper/internal/models"
)

// MigrationResult reports what MigrateToCloud copied.
type MigrationResult struct {
	Habits  int
	Entries int
	Skipped bool // the marker was already set
}

// MigrateToCloud copies the local catalog and history into the cloud store
// once. Local records overwrite cloud records with the same id; cloud-only
// records are kept. The cloud_migrated marker in meta guards reruns.
func MigrateToCloud(ctx context.Context, local, cloud Provider, meta MetaStore) (MigrationResult, error) {
	marker, err := meta.GetMeta(ctx, constants.MetaCloudMigrated)
	switch {
	case err == nil && marker != "":
		return MigrationResult{Skipped: true}, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return MigrationResult{}, fmt.Errorf("failed to read migration marker: %w", err)
	}

	result, err := Merge(ctx, local, cloud)
	if err != nil {
		return MigrationResult{}, err
	}

	if err := meta.SetMeta(ctx, constants.MetaCloudMigrated, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return result, fmt.Errorf("failed to record migration marker: %w", err)
	}
	logger.Info("migrated local data to cloud", "habits", result.Habits, "entries", result.Entries, "target", cloud.GetConfigPath())
	return result, nil
}

// Merge copies the habits and entries of src into dst. Records of src replace
// records of dst with the same id; records only dst has are kept. Nothing is
// written when src is empty.
func Merge(ctx context.Context, src, dst Provider) (MigrationResult, error) {
	srcHabits, err := src.LoadHabits(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to read source habits: %w", err)
	}
	srcEntries, err := src.LoadEntries(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to read source entries: %w", err)
	}

	result := MigrationResult{Habits: len(srcHabits), Entries: len(srcEntries)}
	if len(srcHabits) == 0 && len(srcEntries) == 0 {
		return result, nil
	}

	dstHabits, err := dst.LoadHabits(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to read destination habits: %w", err)
	}
	dstEntries, err := dst.LoadEntries(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to read destination entries: %w", err)
	}

	habits := merge(srcHabits, dstHabits, func(h models.Habit) string { return h.ID })
	entries := merge(srcEntries, dstEntries, func(e models.Entry) string { return e.ID })

	if err := dst.SaveHabits(ctx, habits); err != nil {
		return MigrationResult{}, fmt.Errorf("failed to write habits: %w", err)
	}
	if err := dst.SaveEntries(ctx, entries); err != nil {
		return MigrationResult{}, fmt.Errorf("failed to write entries: %w", err)
	}
	return result, nil
}

// merge returns primary followed by the items of secondary whose key is not in primary.
func merge[T any](primary, secondary []T, key func(T) string) []T {
	seen := make(map[string]bool, len(primary))
	out := make([]T, 0, len(primary)+len(secondary))
	for _, v := range primary {
		seen[key(v)] = true
		out = append(out, v)
	}
	for _, v := range secondary {
		if !seen[key(v)] {
			out = append(out, v)
		}
	}
	return out
}
