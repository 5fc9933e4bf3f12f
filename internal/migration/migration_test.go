package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	return db, func() { db.Close() }
}

func migrationsFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func TestCurrentVersionFreshDatabase(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	runner := NewRunner(db, migrationsFS(map[string]string{
		"001_test.sql": "CREATE TABLE test (id INTEGER);",
	}))

	version, err := runner.CurrentVersion(context.Background())
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}
}

func TestMigrationsSortedAndParsed(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	runner := NewRunner(db, migrationsFS(map[string]string{
		"002_second.sql": "SELECT 1;",
		"001_first.sql":  "SELECT 1;",
		"README.md":      "not a migration",
		"010_tenth.sql":  "SELECT 1;",
	}))

	migrations, err := runner.Migrations()
	if err != nil {
		t.Fatalf("Migrations failed: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	wantNames := []string{"first", "second", "tenth"}
	for i, m := range migrations {
		if m.Name != wantNames[i] {
			t.Errorf("migration %d name = %q, want %q", i, m.Name, wantNames[i])
		}
	}
	if migrations[2].Version != 10 {
		t.Errorf("expected version 10, got %d", migrations[2].Version)
	}
}

func TestApplyFromScratchAndIncremental(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	files := map[string]string{
		"001_habits.sql": "CREATE TABLE habits (id TEXT PRIMARY KEY);",
	}
	applied, err := NewRunner(db, migrationsFS(files)).Apply(ctx, nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied, got %d", applied)
	}

	files["002_entries.sql"] = "CREATE TABLE entries (id TEXT PRIMARY KEY);\nCREATE INDEX idx_entries_id ON entries(id);"
	var logs []string
	runner := NewRunner(db, migrationsFS(files))
	applied, err = runner.Apply(ctx, func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 incremental migration, got %d", applied)
	}
	if len(logs) == 0 {
		t.Errorf("expected progress to be logged")
	}

	version, err := runner.CurrentVersion(ctx)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	applied, err = runner.Apply(ctx, nil)
	if err != nil || applied != 0 {
		t.Errorf("expected no-op, got applied=%d err=%v", applied, err)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	runner := NewRunner(db, migrationsFS(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE broken (id INTEGER); THIS IS NOT SQL;",
	}))

	applied, err := runner.Apply(ctx, nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", applied)
	}

	version, _ := runner.CurrentVersion(ctx)
	if version != 1 {
		t.Errorf("expected version to stay at 1, got %d", version)
	}

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='broken'").Scan(&name)
	if err != sql.ErrNoRows {
		t.Errorf("expected broken table to be rolled back, got name=%q err=%v", name, err)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	files := map[string]string{
		"001_a.sql": "CREATE TABLE a (id INTEGER);",
		"002_b.sql": "CREATE TABLE b (id INTEGER);",
	}
	if _, err := NewRunner(db, migrationsFS(files)).Apply(ctx, nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	delete(files, "002_b.sql")
	err := NewRunner(db, migrationsFS(files)).ValidateVersion(ctx)
	if err == nil {
		t.Fatal("expected error for database newer than the application")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInvalidMigrationFilenames(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "missing underscore",
			files: map[string]string{"001.sql": "SELECT 1;"},
			want:  "invalid migration filename",
		},
		{
			name:  "non numeric version",
			files: map[string]string{"abc_init.sql": "SELECT 1;"},
			want:  "invalid version number",
		},
		{
			name:  "version zero",
			files: map[string]string{"000_init.sql": "SELECT 1;"},
			want:  "at least 1",
		},
		{
			name:  "duplicate version",
			files: map[string]string{"001_a.sql": "SELECT 1;", "001_b.sql": "SELECT 1;"},
			want:  "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, migrationsFS(tt.files)).Migrations()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestDialectPlaceholder(t *testing.T) {
	if got := SQLite.placeholder(3); got != "?" {
		t.Errorf("SQLite placeholder = %q, want ?", got)
	}
	if got := Postgres.placeholder(3); got != "$3" {
		t.Errorf("Postgres placeholder = %q, want $3", got)
	}
}
