package streak

import (
	"testing"
	"time"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/utils"
)

func testCalendar(today string) utils.Calendar {
	now, _ := time.Parse("2006-01-02", today)
	now = now.Add(15 * time.Hour)
	return utils.NewCalendar(time.UTC).WithClock(func() time.Time { return now })
}

func entriesOn(days ...string) []models.Entry {
	out := make([]models.Entry, len(days))
	for i, d := range days {
		out[i] = models.Entry{ID: d, HabitID: "h", DateISO: d}
	}
	return out
}

func TestCalculate(t *testing.T) {
	cal := testCalendar("2024-01-15")

	tests := []struct {
		name        string
		days        []string
		wantCurrent int
		wantLongest int
	}{
		{
			name: "no entries",
		},
		{
			name:        "active today only",
			days:        []string{"2024-01-15"},
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "streak through today",
			days:        []string{"2024-01-13", "2024-01-14", "2024-01-15"},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "today not yet active keeps yesterday's streak",
			days:        []string{"2024-01-12", "2024-01-13", "2024-01-14"},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "gap before yesterday breaks the streak",
			days:        []string{"2024-01-10", "2024-01-11", "2024-01-12", "2024-01-13"},
			wantCurrent: 0,
			wantLongest: 4,
		},
		{
			name:        "longer run in the past",
			days:        []string{"2023-12-01", "2023-12-02", "2023-12-03", "2023-12-04", "2024-01-14", "2024-01-15"},
			wantCurrent: 2,
			wantLongest: 4,
		},
		{
			name:        "run across a month boundary",
			days:        []string{"2023-12-30", "2023-12-31", "2024-01-01"},
			wantCurrent: 0,
			wantLongest: 3,
		},
		{
			name:        "duplicates count once",
			days:        []string{"2024-01-15", "2024-01-15", "2024-01-14"},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:        "future entries are ignored by the current streak",
			days:        []string{"2024-01-16", "2024-01-17"},
			wantCurrent: 0,
			wantLongest: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(entriesOn(tt.days...), cal)
			if got.CurrentStreak != tt.wantCurrent {
				t.Errorf("CurrentStreak = %d, want %d", got.CurrentStreak, tt.wantCurrent)
			}
			if got.LongestStreak != tt.wantLongest {
				t.Errorf("LongestStreak = %d, want %d", got.LongestStreak, tt.wantLongest)
			}
			if got.LongestStreak < got.CurrentStreak {
				t.Errorf("LongestStreak %d < CurrentStreak %d", got.LongestStreak, got.CurrentStreak)
			}
		})
	}
}

func TestCalculate_ActiveDaysSortedAndUnique(t *testing.T) {
	cal := testCalendar("2024-01-15")
	got := Calculate(entriesOn("2024-01-15", "2024-01-02", "2024-01-15", "2023-11-30"), cal)

	want := []string{"2023-11-30", "2024-01-02", "2024-01-15"}
	if len(got.ActiveDays) != len(want) {
		t.Fatalf("ActiveDays = %v, want %v", got.ActiveDays, want)
	}
	for i := range want {
		if got.ActiveDays[i] != want[i] {
			t.Errorf("ActiveDays[%d] = %s, want %s", i, got.ActiveDays[i], want[i])
		}
	}
}

func TestCalculate_LookbackCap(t *testing.T) {
	cal := testCalendar("2024-12-31")

	days := make([]string, 0, 400)
	for i := 0; i < 400; i++ {
		days = append(days, cal.AddDays("2024-12-31", -i))
	}

	got := Calculate(entriesOn(days...), cal)
	if got.CurrentStreak != 365 {
		t.Errorf("CurrentStreak = %d, want 365", got.CurrentStreak)
	}
	if got.LongestStreak != 400 {
		t.Errorf("LongestStreak = %d, want 400", got.LongestStreak)
	}
}

func TestLevel(t *testing.T) {
	cal := testCalendar("2024-01-15")
	at := func(day string, hour int) time.Time {
		d, _ := time.Parse("2006-01-02", day)
		return d.Add(time.Duration(hour) * time.Hour)
	}

	entries := []models.Entry{
		{ID: "1", DateISO: "2024-01-10", Timestamp: at("2024-01-10", 9)},
		{ID: "2", DateISO: "2024-01-10", Timestamp: at("2024-01-10", 18)},
		{ID: "3", DateISO: "2024-01-11", Timestamp: at("2024-01-12", 8)}, // backdated
		{ID: "4", DateISO: "2024-01-12", Timestamp: at("2024-01-12", 8)},
	}

	if got := Level(entries, cal); got != 2 {
		t.Errorf("Level() = %d, want 2", got)
	}
	if got := Level(nil, cal); got != 0 {
		t.Errorf("Level(nil) = %d, want 0", got)
	}
}

func TestLevel_BackdatingDropsOne(t *testing.T) {
	cal := testCalendar("2024-01-15")
	at := func(day string, hour int) time.Time {
		d, _ := time.Parse("2006-01-02", day)
		return d.Add(time.Duration(hour) * time.Hour)
	}

	tests := []struct {
		name    string
		entries []models.Entry
		moved   string // entry whose DateISO moves back one day
	}{
		{
			name:    "single entry",
			entries: []models.Entry{{ID: "1", DateISO: "2024-01-12", Timestamp: at("2024-01-12", 9)}},
			moved:   "1",
		},
		{
			name: "one of several days",
			entries: []models.Entry{
				{ID: "1", DateISO: "2024-01-10", Timestamp: at("2024-01-10", 9)},
				{ID: "2", DateISO: "2024-01-11", Timestamp: at("2024-01-11", 9)},
				{ID: "3", DateISO: "2024-01-12", Timestamp: at("2024-01-12", 9)},
			},
			moved: "2",
		},
		{
			name: "onto a day that already counts",
			entries: []models.Entry{
				{ID: "1", DateISO: "2024-01-11", Timestamp: at("2024-01-11", 9)},
				{ID: "2", DateISO: "2024-01-12", Timestamp: at("2024-01-12", 20)},
			},
			moved: "2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := Level(tt.entries, cal)

			moved := make([]models.Entry, len(tt.entries))
			copy(moved, tt.entries)
			for i, e := range moved {
				if e.ID == tt.moved {
					d, _ := time.Parse("2006-01-02", e.DateISO)
					moved[i].DateISO = d.AddDate(0, 0, -1).Format("2006-01-02")
				}
			}

			if got := Level(moved, cal); got != before-1 {
				t.Errorf("Level() after backdating = %d, want %d", got, before-1)
			}
		})
	}
}

func TestLevel_UsesCalendarTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	cal := utils.NewCalendar(loc)

	// 03:00 UTC on the 11th is the evening of the 10th at UTC-8.
	entries := []models.Entry{
		{ID: "1", DateISO: "2024-01-10", Timestamp: time.Date(2024, 1, 11, 3, 0, 0, 0, time.UTC)},
	}
	if got := Level(entries, cal); got != 1 {
		t.Errorf("Level() = %d, want 1", got)
	}
}
