package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/storage"
)

const entryColumns = `id, habit_id, date_iso, logged_at, category_snapshot, unit_value`

func (s *Store) LoadEntries(ctx context.Context) ([]models.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY date_iso, logged_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		var category, timestamp string
		if err := rows.Scan(&e.ID, &e.HabitID, &e.DateISO, &timestamp, &category, &e.UnitValue); err != nil {
			return nil, err
		}
		e.CategorySnapshot = models.Category(category)
		if e.Timestamp, err = time.Parse(timeLayout, timestamp); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp for entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveEntries replaces the whole entry history.
func (s *Store) SaveEntries(ctx context.Context, entries []models.Entry) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	for _, e := range entries {
		if err := upsertEntry(ctx, tx, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) AddEntry(ctx context.Context, entry models.Entry) error {
	if err := s.ready(); err != nil {
		return err
	}
	return upsertEntry(ctx, s.db, entry)
}

func (s *Store) UpdateEntry(ctx context.Context, entry models.Entry) error {
	if err := s.ready(); err != nil {
		return err
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM entries WHERE id = ?)", entry.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("entry %s: %w", entry.ID, storage.ErrNotFound)
	}
	return upsertEntry(ctx, s.db, entry)
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func upsertEntry(ctx context.Context, db execer, e models.Entry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			habit_id = excluded.habit_id,
			date_iso = excluded.date_iso,
			logged_at = excluded.logged_at,
			category_snapshot = excluded.category_snapshot,
			unit_value = excluded.unit_value`,
		e.ID, e.HabitID, e.DateISO, e.Timestamp.UTC().Format(timeLayout), string(e.CategorySnapshot), e.UnitValue)
	if err != nil {
		return fmt.Errorf("failed to save entry %s: %w", e.ID, err)
	}
	return nil
}

