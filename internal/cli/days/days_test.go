package days

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/stats"
	"github.com/julianstephens/prosper/internal/storage/sqlite"
	"github.com/julianstephens/prosper/internal/tracker"
	"github.com/julianstephens/prosper/internal/utils"
)

var testNow = time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(t.Context()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	cal := utils.NewCalendar(time.UTC).WithClock(func() time.Time { return testNow })
	return cli.NewWithStores(t.Context(), store, nil, cal, nil, &out), &out
}

func addHabit(t *testing.T, ctx *cli.Context, name string, cat models.Category) models.Habit {
	t.Helper()
	h, err := ctx.Tracker.AddHabit(ctx.Ctx, models.HabitDraft{Name: name, Category: cat, IsPinned: true})
	if err != nil {
		t.Fatalf("AddHabit(%q) error = %v", name, err)
	}
	return h
}

func TestToggleCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	walk := addHabit(t, ctx, "Morning walk", models.CategoryBody)

	cmd := &ToggleCmd{Habit: "morning", Date: "yesterday"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	entries, _ := ctx.Tracker.Entries(ctx.Ctx)
	if len(entries) != 1 || entries[0].HabitID != walk.ID || entries[0].DateISO != "2024-01-16" {
		t.Fatalf("entries = %+v", entries)
	}

	out.Reset()
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if !strings.Contains(out.String(), "Unmarked") {
		t.Errorf("output = %q", out.String())
	}
	if entries, _ := ctx.Tracker.Entries(ctx.Ctx); len(entries) != 0 {
		t.Errorf("entries after untoggle = %d", len(entries))
	}
}

func TestToggleCmdErrors(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, "Read", models.CategoryMind)
	addHabit(t, ctx, "Rest", models.CategoryEnergy)

	tests := []struct {
		name    string
		cmd     ToggleCmd
		wantErr error
	}{
		{"ambiguous", ToggleCmd{Habit: "re", Date: "today"}, tracker.ErrAmbiguous},
		{"unknown", ToggleCmd{Habit: "swim", Date: "today"}, tracker.ErrHabitNotFound},
		{"bad date", ToggleCmd{Habit: "read", Date: "someday"}, tracker.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDayCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	walk := addHabit(t, ctx, "Walk", models.CategoryBody)
	addHabit(t, ctx, "Budget", models.CategoryMoney)
	if _, err := ctx.Tracker.ToggleEntry(ctx.Ctx, walk.ID, "2024-01-17"); err != nil {
		t.Fatal(err)
	}

	if err := (&TodayCmd{}).Run(ctx); err != nil {
		t.Fatalf("today failed: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Today", "2024-01-17", "Walk", "Budget", "Completed", "1/2 pinned done"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	out.Reset()
	if err := (&DayCmd{Date: "2024-01-17", JSON: true}).Run(ctx); err != nil {
		t.Fatalf("day --json failed: %v", err)
	}
	var view stats.DayView
	if err := json.Unmarshal(out.Bytes(), &view); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(view.Habits) != 2 || len(view.Entries) != 1 {
		t.Errorf("view = %+v", view)
	}
}

func TestDayCmdBeforeHabitsExisted(t *testing.T) {
	ctx, out := setupTestContext(t)
	addHabit(t, ctx, "Walk", models.CategoryBody)

	if err := (&DayCmd{Date: "2024-01-10"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Nothing scheduled") {
		t.Errorf("output = %q", out.String())
	}
}

func TestStatsCommands(t *testing.T) {
	ctx, out := setupTestContext(t)
	walk := addHabit(t, ctx, "Walk", models.CategoryBody)
	for _, day := range []string{"2024-01-16", "2024-01-17"} {
		if _, err := ctx.Tracker.ToggleEntry(ctx.Ctx, walk.ID, day); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		run  func() error
		want []string
	}{
		{"radar", func() error { return (&RadarCmd{Date: "today"}).Run(ctx) }, []string{"Balance for 2024-01-17", "Body", "Prosperity score"}},
		{"streak", func() error { return (&StreakCmd{}).Run(ctx) }, []string{"Current streak: 2 days", "Longest streak: 2 days"}},
		{"history", func() error { return (&HistoryCmd{Limit: 1}).Run(ctx) }, []string{"2024-01-17"}},
		{"summary", func() error { return (&SummaryCmd{}).Run(ctx) }, []string{"Average balance", "Active days:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := tt.run(); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}

	out.Reset()
	if err := (&HistoryCmd{Limit: 1}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "2024-01-16") {
		t.Error("history ignored --limit")
	}
}
