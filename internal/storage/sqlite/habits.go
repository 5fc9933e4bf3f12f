package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/storage"
)

const habitColumns = `id, name, description, category, periodicity, days_of_week, target_date,
	is_pinned, is_before_sleep, sort_order, unit_type, min_threshold, tags, created_at`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) LoadHabits(ctx context.Context) ([]models.Habit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+habitColumns+` FROM habits ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// SaveHabits replaces the whole catalog, keeping the given order.
func (s *Store) SaveHabits(ctx context.Context, habits []models.Habit) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM habits"); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}
	for i, h := range habits {
		if err := upsertHabit(ctx, tx, h, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	if err := s.ready(); err != nil {
		return err
	}

	var next int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM habits").Scan(&next); err != nil {
		return fmt.Errorf("failed to compute habit position: %w", err)
	}
	return upsertHabit(ctx, s.db, habit, next)
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	if err := s.ready(); err != nil {
		return err
	}

	var position int
	err := s.db.QueryRowContext(ctx, "SELECT position FROM habits WHERE id = ?", habit.ID).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("habit %s: %w", habit.ID, storage.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return upsertHabit(ctx, s.db, habit, position)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func upsertHabit(ctx context.Context, db execer, h models.Habit, position int) error {
	days, err := storage.EncodeWeekdays(h.DaysOfWeek)
	if err != nil {
		return err
	}
	tags, err := storage.EncodeTags(h.Tags)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			periodicity = excluded.periodicity,
			days_of_week = excluded.days_of_week,
			target_date = excluded.target_date,
			is_pinned = excluded.is_pinned,
			is_before_sleep = excluded.is_before_sleep,
			sort_order = excluded.sort_order,
			unit_type = excluded.unit_type,
			min_threshold = excluded.min_threshold,
			tags = excluded.tags,
			created_at = excluded.created_at,
			position = excluded.position`,
		h.ID, h.Name, h.Description, string(h.Category), string(h.EffectivePeriodicity()),
		days, h.TargetDate, h.IsPinned, h.IsBeforeSleep, h.Order, h.UnitType, h.MinThreshold,
		tags, h.CreatedAt.UTC().Format(timeLayout), position)
	if err != nil {
		return fmt.Errorf("failed to save habit %s: %w", h.ID, err)
	}
	return nil
}

func scanHabit(rows *sql.Rows) (models.Habit, error) {
	var h models.Habit
	var category, periodicity, tags, createdAt string
	var days sql.NullString

	err := rows.Scan(&h.ID, &h.Name, &h.Description, &category, &periodicity, &days, &h.TargetDate,
		&h.IsPinned, &h.IsBeforeSleep, &h.Order, &h.UnitType, &h.MinThreshold, &tags, &createdAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Category = models.Category(category)
	h.Periodicity = models.Periodicity(periodicity)
	if h.DaysOfWeek, err = storage.DecodeWeekdays(days); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if h.Tags, err = storage.DecodeTags(tags); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if h.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	return h, nil
}
