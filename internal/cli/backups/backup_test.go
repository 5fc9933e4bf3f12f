package backups

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/storage/sqlite"
	"github.com/julianstephens/prosper/internal/utils"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "prosper.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(t.Context()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	now := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	cal := utils.NewCalendar(time.UTC).WithClock(func() time.Time { return now })
	return cli.NewWithStores(t.Context(), store, nil, cal, nil, &out), &out, dbPath
}

func TestBackupList(t *testing.T) {
	ctx, out, _ := setupTestContext(t)
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("output = %q", out.String())
	}

	for range 2 {
		if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2 total") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, out, dbPath := setupTestContext(t)
	if _, err := ctx.Tracker.AddHabit(ctx.Ctx, models.HabitDraft{Name: "Walk", Category: models.CategoryBody}); err != nil {
		t.Fatal(err)
	}
	path, err := ctx.Backups().Create(ctx.Ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Tracker.AddHabit(ctx.Ctx, models.HabitDraft{Name: "Read", Category: models.CategoryMind}); err != nil {
		t.Fatal(err)
	}

	ctx.In = strings.NewReader("n\n")
	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(path)}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Restore cancelled.") {
		t.Errorf("output = %q", out.String())
	}

	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(path), Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Previous database saved as") {
		t.Errorf("output = %q", out.String())
	}

	restored := sqlite.NewStore(dbPath)
	if err := restored.Load(t.Context()); err != nil {
		t.Fatal(err)
	}
	defer restored.Close()
	habits, err := restored.LoadHabits(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 1 || habits[0].Name != "Walk" {
		t.Errorf("restored habits = %+v", habits)
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _, _ := setupTestContext(t)
	err := (&BackupRestoreCmd{BackupFile: "nope.db", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v", err)
	}
}
