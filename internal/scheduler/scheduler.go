package scheduler

import (
	"slices"
	"sort"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/utils"
)

// Scheduler decides which habits belong to a calendar day.
type Scheduler struct {
	cal utils.Calendar
}

func New(cal utils.Calendar) *Scheduler {
	return &Scheduler{cal: cal}
}

// Calendar returns the calendar the scheduler resolves days against.
func (s *Scheduler) Calendar() utils.Calendar {
	return s.cal
}

// EntryIndex answers "does habit X have an entry on day D" and "does habit X
// have an entry at all" without rescanning the history.
type EntryIndex struct {
	datesByHabit map[string]map[string]struct{}
}

// NewEntryIndex indexes entries by habit and day.
func NewEntryIndex(entries []models.Entry) EntryIndex {
	idx := EntryIndex{datesByHabit: make(map[string]map[string]struct{})}
	for _, e := range entries {
		dates, ok := idx.datesByHabit[e.HabitID]
		if !ok {
			dates = make(map[string]struct{})
			idx.datesByHabit[e.HabitID] = dates
		}
		dates[e.DateISO] = struct{}{}
	}
	return idx
}

// HasEntryOn reports whether habitID has an entry dated day.
func (idx EntryIndex) HasEntryOn(habitID, day string) bool {
	_, ok := idx.datesByHabit[habitID][day]
	return ok
}

// HasAnyEntry reports whether habitID has been completed on any day.
func (idx EntryIndex) HasAnyEntry(habitID string) bool {
	return len(idx.datesByHabit[habitID]) > 0
}

// HabitsForDay returns the habits visible on day, in catalog order. A habit is
// visible when its schedule places it on the day or when it has an entry dated
// that day.
func (s *Scheduler) HabitsForDay(habits []models.Habit, entries []models.Entry, day string) []models.Habit {
	idx := NewEntryIndex(entries)

	result := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if s.Scheduled(h, day, idx) || idx.HasEntryOn(h.ID, day) {
			result = append(result, h)
		}
	}
	return result
}

// Scheduled applies the scheduling rules alone, without the completed-on-day
// union performed by HabitsForDay.
func (s *Scheduler) Scheduled(h models.Habit, day string, idx EntryIndex) bool {
	// Nothing is scheduled before the habit existed.
	if day < s.cal.ToISO(h.CreatedAt) {
		return false
	}

	if h.EffectivePeriodicity() == models.PeriodicityOnce {
		return s.scheduleOnce(h, day, idx)
	}
	return ShouldScheduleOnWeekday(h, s.cal.DayOfWeek(day))
}

func (s *Scheduler) scheduleOnce(h models.Habit, day string, idx EntryIndex) bool {
	target, hasTarget := h.TargetDate.Get()
	if hasTarget && target == day {
		return true
	}
	if idx.HasEntryOn(h.ID, day) {
		return true
	}

	// An unfinished one-off is carried over onto today until it is done.
	today := s.cal.Today()
	if day == today && !idx.HasAnyEntry(h.ID) {
		return !hasTarget || target <= today
	}
	return false
}

// ShouldScheduleOnWeekday reports whether a recurring habit is due on weekday
// (0 = Sunday). A habit without an explicit weekday set is due every day.
func ShouldScheduleOnWeekday(h models.Habit, weekday int) bool {
	return slices.Contains(h.Schedule(), weekday)
}

// Arrangement groups a day's habits the way they are presented.
type Arrangement struct {
	Regular     []models.Habit `json:"regular"`
	BeforeSleep []models.Habit `json:"beforeSleep"`
	Completed   []models.Habit `json:"completed"`
}

// All returns the groups concatenated in display order.
func (a Arrangement) All() []models.Habit {
	all := make([]models.Habit, 0, len(a.Regular)+len(a.BeforeSleep)+len(a.Completed))
	all = append(all, a.Regular...)
	all = append(all, a.BeforeSleep...)
	return append(all, a.Completed...)
}

// Arrange splits habits into pending regular, pending before-sleep and
// completed groups, each sorted by Order. Habits without an order sort last.
// dayEntries are the entries of the day being shown.
func Arrange(habits []models.Habit, dayEntries []models.Entry) Arrangement {
	done := make(map[string]bool, len(dayEntries))
	for _, e := range dayEntries {
		done[e.HabitID] = true
	}

	var a Arrangement
	for _, h := range habits {
		switch {
		case done[h.ID]:
			a.Completed = append(a.Completed, h)
		case h.IsBeforeSleep:
			a.BeforeSleep = append(a.BeforeSleep, h)
		default:
			a.Regular = append(a.Regular, h)
		}
	}

	SortByOrder(a.Regular)
	SortByOrder(a.BeforeSleep)
	SortByOrder(a.Completed)
	return a
}

// SortByOrder sorts habits by Order in place, keeping catalog order for ties.
func SortByOrder(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		oi, iok := habits[i].Order.Get()
		oj, jok := habits[j].Order.Get()
		if iok != jok {
			return iok
		}
		return oi < oj
	})
}

// FilterCategory keeps the habits of one category. An empty category keeps all.
func FilterCategory(habits []models.Habit, cat models.Category) []models.Habit {
	if cat == "" {
		return habits
	}
	var out []models.Habit
	for _, h := range habits {
		if h.Category == cat {
			out = append(out, h)
		}
	}
	return out
}
