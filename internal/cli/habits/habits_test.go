package habits

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/storage/sqlite"
	"github.com/julianstephens/prosper/internal/tracker"
	"github.com/julianstephens/prosper/internal/utils"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(t.Context()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	now := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	cal := utils.NewCalendar(time.UTC).WithClock(func() time.Time { return now })
	return cli.NewWithStores(t.Context(), store, nil, cal, nil, &out), &out
}

func TestHabitAddCmd(t *testing.T) {
	tests := []struct {
		name    string
		cmd     HabitAddCmd
		check   func(t *testing.T, h models.Habit)
		wantErr bool
	}{
		{
			name: "recurring on weekdays",
			cmd:  HabitAddCmd{Name: "Gym", Category: "body", Days: "mon,wed,fri", Pinned: true},
			check: func(t *testing.T, h models.Habit) {
				if h.Category != models.CategoryBody || !h.IsPinned {
					t.Errorf("habit = %+v", h)
				}
				if len(h.DaysOfWeek) != 3 || h.DaysOfWeek[0] != 1 || h.DaysOfWeek[2] != 5 {
					t.Errorf("DaysOfWeek = %v", h.DaysOfWeek)
				}
			},
		},
		{
			name: "every day",
			cmd:  HabitAddCmd{Name: "Water", Category: "Energy"},
			check: func(t *testing.T, h models.Habit) {
				if h.DaysOfWeek != nil {
					t.Errorf("DaysOfWeek = %v, want nil", h.DaysOfWeek)
				}
			},
		},
		{
			name: "one-off with target",
			cmd:  HabitAddCmd{Name: "Taxes", Category: "Money", Once: true, Target: "2024-04-15", Unit: "min"},
			check: func(t *testing.T, h models.Habit) {
				target, _ := h.TargetDate.Get()
				unit, _ := h.UnitType.Get()
				if h.Periodicity != models.PeriodicityOnce || target != "2024-04-15" || unit != models.UnitMin {
					t.Errorf("habit = %+v", h)
				}
			},
		},
		{name: "missing name", cmd: HabitAddCmd{Category: "Body"}, wantErr: true},
		{name: "unknown category", cmd: HabitAddCmd{Name: "x", Category: "Fun"}, wantErr: true},
		{name: "bad weekday", cmd: HabitAddCmd{Name: "x", Category: "Body", Days: "funday"}, wantErr: true},
		{name: "target without once", cmd: HabitAddCmd{Name: "x", Category: "Body", Target: "2024-04-15"}, wantErr: true},
		{name: "bad unit", cmd: HabitAddCmd{Name: "x", Category: "Body", Unit: "km"}, wantErr: true},
		{name: "bad target", cmd: HabitAddCmd{Name: "x", Category: "Body", Once: true, Target: "soon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestContext(t)
			err := tt.cmd.Run(ctx)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("add failed: %v", err)
			}
			h, err := ctx.Tracker.FindHabit(ctx.Ctx, tt.cmd.Name)
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, h)
		})
	}
}

func TestHabitAddInteractive(t *testing.T) {
	old := runForm
	t.Cleanup(func() { runForm = old })
	runForm = func(*huh.Form) error { return nil }

	ctx, _ := setupTestContext(t)
	cmd := &HabitAddCmd{Name: "Journal", Category: "mind", Days: "sun", Interactive: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("interactive add failed: %v", err)
	}
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, "Journal")
	if err != nil || h.Category != models.CategoryMind || len(h.DaysOfWeek) != 1 {
		t.Errorf("habit = %+v, %v", h, err)
	}

	runForm = func(*huh.Form) error { return huh.ErrUserAborted }
	if err := (&HabitAddCmd{Interactive: true}).Run(ctx); !errors.Is(err, huh.ErrUserAborted) {
		t.Errorf("aborted form = %v", err)
	}
}

func TestHabitListCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	for _, cmd := range []HabitAddCmd{
		{Name: "Walk", Category: "Body", Pinned: true},
		{Name: "Read", Category: "Mind", Days: "sat,sun"},
	} {
		if err := cmd.Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	out.Reset()
	if err := (&HabitListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "Walk") || !strings.Contains(text, "weekly on sun,sat") {
		t.Errorf("list output:\n%s", text)
	}
	// Newest habits are added on top.
	if strings.Index(text, "Read") > strings.Index(text, "Walk") {
		t.Errorf("list order:\n%s", text)
	}

	out.Reset()
	if err := (&HabitListCmd{Category: "mind"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "Walk") {
		t.Errorf("category filter ignored:\n%s", out.String())
	}
}

func TestHabitEditCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&HabitAddCmd{Name: "Walk", Category: "Body", Description: "outside"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	name, days, empty, yes := "Long walk", "daily", "", true
	cmd := &HabitEditCmd{Habit: "walk", Name: &name, Days: &days, Description: &empty, Pinned: &yes}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, "Long walk")
	if err != nil {
		t.Fatal(err)
	}
	if h.Description.IsSet() || !h.IsPinned || h.DaysOfWeek != nil {
		t.Errorf("habit = %+v", h)
	}

	bad := "Fun"
	if err := (&HabitEditCmd{Habit: h.ID, Category: &bad}).Run(ctx); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestHabitDeleteCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&HabitAddCmd{Name: "Walk", Category: "Body"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	ctx.In = strings.NewReader("n\n")
	if err := (&HabitDeleteCmd{Habit: "walk"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("output = %q", out.String())
	}

	ctx.In = strings.NewReader("y\n")
	if err := (&HabitDeleteCmd{Habit: "walk"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Tracker.FindHabit(ctx.Ctx, "walk"); !errors.Is(err, tracker.ErrHabitNotFound) {
		t.Errorf("habit still present: %v", err)
	}
}

func TestHabitPinAndRestoreDefaults(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&HabitAddCmd{Name: "Walk", Category: "Body"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&HabitPinCmd{Habit: "walk"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Pinned Walk") {
		t.Errorf("output = %q", out.String())
	}

	if err := (&HabitRestoreDefaultsCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	habits, _ := ctx.Tracker.Habits(ctx.Ctx)
	if len(habits) != len(tracker.DefaultHabits) {
		t.Errorf("habits = %d, want %d", len(habits), len(tracker.DefaultHabits))
	}
	if backups, err := ctx.Backups().List(); err != nil || len(backups) != 1 {
		t.Errorf("backups = %d, %v, want one automatic backup", len(backups), err)
	}
}
