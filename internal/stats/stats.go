// Package stats assembles the per-day, historical and summary views from the
// core calculators.
package stats

import (
	"math"
	"sort"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/radar"
	"github.com/julianstephens/prosper/internal/scheduler"
	"github.com/julianstephens/prosper/internal/streak"
)

// DayView is everything needed to render one calendar day.
type DayView struct {
	DateISO     string                `json:"dateISO"`
	Label       string                `json:"label"`
	Habits      []models.Habit        `json:"habits"`
	Entries     []models.Entry        `json:"entries"`
	Arrangement scheduler.Arrangement `json:"arrangement"`
	Stats       models.DayStats       `json:"stats"`
	Level       int                   `json:"level"`
}

// Completed reports whether habitID has an entry on the viewed day.
func (v DayView) Completed(habitID string) bool {
	for _, e := range v.Entries {
		if e.HabitID == habitID {
			return true
		}
	}
	return false
}

// BuildDay resolves the habits of day and scores the day's completions against them.
func BuildDay(sched *scheduler.Scheduler, habits []models.Habit, entries []models.Entry, day string) DayView {
	cal := sched.Calendar()
	visible := sched.HabitsForDay(habits, entries, day)

	ids := make(map[string]bool, len(visible))
	for _, h := range visible {
		ids[h.ID] = true
	}
	dayEntries := make([]models.Entry, 0)
	for _, e := range entries {
		if e.DateISO == day && ids[e.HabitID] {
			dayEntries = append(dayEntries, e)
		}
	}

	return DayView{
		DateISO:     day,
		Label:       cal.LabelForOffset(day),
		Habits:      visible,
		Entries:     dayEntries,
		Arrangement: scheduler.Arrange(visible, dayEntries),
		Stats:       DayStats(dayEntries, visible),
		Level:       streak.Level(entries, cal),
	}
}

// DayStats scores entries against habits and counts completions and pinned habits.
func DayStats(entries []models.Entry, habits []models.Habit) models.DayStats {
	return models.DayStats{
		Radar:      radar.Compute(entries, habits),
		EntryCount: len(entries),
		TotalCount: pinnedCount(habits),
	}
}

// GroupByDay buckets entries by the day they count for.
func GroupByDay(entries []models.Entry) map[string][]models.Entry {
	byDay := make(map[string][]models.Entry)
	for _, e := range entries {
		byDay[e.DateISO] = append(byDay[e.DateISO], e)
	}
	return byDay
}

// InRange keeps entries dated within [from, to]. An empty bound is open.
func InRange(entries []models.Entry, from, to string) []models.Entry {
	if from == "" && to == "" {
		return entries
	}
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if from != "" && e.DateISO < from {
			continue
		}
		if to != "" && e.DateISO > to {
			continue
		}
		out = append(out, e)
	}
	return out
}

// History returns one summary per day with activity, newest first. Every day
// is scored against the whole catalog.
func History(habits []models.Habit, entries []models.Entry) []models.DaySummary {
	total := pinnedCount(habits)
	byDay := GroupByDay(entries)

	days := make([]models.DaySummary, 0, len(byDay))
	for day, dayEntries := range byDay {
		r := radar.Compute(dayEntries, habits)
		days = append(days, models.DaySummary{
			DateISO:         day,
			CompletedTasks:  len(dayEntries),
			TotalTasks:      total,
			ProsperityLevel: int(math.Round(r.Score)),
		})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].DateISO > days[j].DateISO
	})
	return days
}

// Summarize averages the daily radar over every day with activity. level is
// carried through unchanged.
func Summarize(habits []models.Habit, entries []models.Entry, level int) models.Summary {
	byDay := GroupByDay(entries)
	if len(byDay) == 0 {
		return models.Summary{
			AverageRadar: models.RadarData{Percentages: radar.ZeroPercentages()},
			Level:        level,
		}
	}

	radars := make([]models.RadarData, 0, len(byDay))
	for _, dayEntries := range byDay {
		radars = append(radars, radar.Compute(dayEntries, habits))
	}

	return models.Summary{
		AverageRadar:   radar.Average(radars),
		TotalDays:      len(byDay),
		AvgTasksPerDay: float64(len(entries)) / float64(len(byDay)),
		Level:          level,
	}
}

func pinnedCount(habits []models.Habit) int {
	n := 0
	for _, h := range habits {
		if h.IsPinned {
			n++
		}
	}
	return n
}
