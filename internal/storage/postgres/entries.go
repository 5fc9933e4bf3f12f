package postgres

import (
	"context"
	"fmt"

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
		var category string
		if err := rows.Scan(&e.ID, &e.HabitID, &e.DateISO, &e.Timestamp, &category, &e.UnitValue); err != nil {
			return nil, err
		}
		e.CategorySnapshot = models.Category(category)
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

	res, err := s.db.ExecContext(ctx, `
		UPDATE entries SET habit_id = $2, date_iso = $3, logged_at = $4, category_snapshot = $5, unit_value = $6
		WHERE id = $1`,
		entry.ID, entry.HabitID, entry.DateISO, entry.Timestamp.UTC(), string(entry.CategorySnapshot), entry.UnitValue)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", entry.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %s: %w", entry.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = $1", id)
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
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			habit_id = EXCLUDED.habit_id,
			date_iso = EXCLUDED.date_iso,
			logged_at = EXCLUDED.logged_at,
			category_snapshot = EXCLUDED.category_snapshot,
			unit_value = EXCLUDED.unit_value`,
		e.ID, e.HabitID, e.DateISO, e.Timestamp.UTC(), string(e.CategorySnapshot), e.UnitValue)
	if err != nil {
		return fmt.Errorf("failed to save entry %s: %w", e.ID, err)
	}
	return nil
}
