// Package validation checks habits on their own and the catalog together with
// its entry history.
package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictUnknownCategory    ConflictType = "unknown_category"
	ConflictInvalidPeriodicity ConflictType = "invalid_periodicity"
	ConflictInvalidWeekday     ConflictType = "invalid_weekday"
	ConflictMissingName        ConflictType = "missing_name"
	ConflictDuplicateHabitID   ConflictType = "duplicate_habit_id"
	ConflictDuplicateEntry     ConflictType = "duplicate_entry"
	ConflictRepeatedOnce       ConflictType = "repeated_once"
	ConflictOrphanedEntry      ConflictType = "orphaned_entry"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityInfo  Severity = "info"
)

// Conflict represents a detected problem in the catalog or history
type Conflict struct {
	Type        ConflictType
	Severity    Severity
	Description string
	Date        string   // YYYY-MM-DD (if applicable)
	HabitIDs    []string // habits involved
	EntryIDs    []string // entries involved
}

type Result struct {
	Conflicts []Conflict
}

// HasErrors reports whether any conflict is more than informational.
func (r Result) HasErrors() bool {
	return slices.ContainsFunc(r.Conflicts, func(c Conflict) bool { return c.Severity == SeverityError })
}

// FormatReport returns a human-readable report of all conflicts
func (r Result) FormatReport() string {
	if len(r.Conflicts) == 0 {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "- [%s] %s\n", c.Severity, c.Description)
	}
	return b.String()
}

// habitProblems lists what is wrong with h in isolation.
func habitProblems(h models.Habit) []Conflict {
	var out []Conflict
	add := func(t ConflictType, format string, args ...any) {
		out = append(out, Conflict{
			Type:        t,
			Severity:    SeverityError,
			Description: fmt.Sprintf(format, args...),
			HabitIDs:    []string{h.ID},
		})
	}

	if strings.TrimSpace(h.Name) == "" {
		add(ConflictMissingName, "Habit %s has no name", h.ID)
	}
	if !h.Category.Valid() {
		add(ConflictUnknownCategory, "Habit %q has unknown category %q", h.Name, h.Category)
	}
	if !h.Periodicity.Valid() {
		add(ConflictInvalidPeriodicity, "Habit %q has unknown periodicity %q", h.Name, h.Periodicity)
	}
	for _, d := range h.DaysOfWeek {
		if d < 0 || d > 6 {
			add(ConflictInvalidWeekday, "Habit %q has weekday %d outside 0-6", h.Name, d)
		}
	}
	if target, ok := h.TargetDate.Get(); ok {
		if err := utils.ValidateISO(target); err != nil {
			add(ConflictInvalidDate, "Habit %q has invalid target date %q", h.Name, target)
		}
	}
	return out
}

// ValidateHabit returns an error describing every problem with h.
func ValidateHabit(h models.Habit) error {
	var errs []error
	for _, c := range habitProblems(h) {
		errs = append(errs, errors.New(c.Description))
	}
	return errors.Join(errs...)
}

// ValidateCatalog checks habits and entries together.
func ValidateCatalog(habits []models.Habit, entries []models.Entry) Result {
	result := Result{Conflicts: []Conflict{}}

	byID := make(map[string]models.Habit, len(habits))
	for _, h := range habits {
		if _, dup := byID[h.ID]; dup {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitID,
				Severity:    SeverityError,
				Description: fmt.Sprintf("Duplicate habit id %s", h.ID),
				HabitIDs:    []string{h.ID},
			})
			continue
		}
		byID[h.ID] = h
		result.Conflicts = append(result.Conflicts, habitProblems(h)...)
	}

	type key struct{ habit, day string }
	perDay := map[key][]string{}
	perHabit := map[string][]string{}
	var dayOrder []key
	var onceOrder []string

	for _, e := range entries {
		if err := utils.ValidateISO(e.DateISO); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Severity:    SeverityError,
				Description: fmt.Sprintf("Entry %s has invalid date %q", e.ID, e.DateISO),
				HabitIDs:    []string{e.HabitID},
				EntryIDs:    []string{e.ID},
			})
		}
		if !e.CategorySnapshot.Valid() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownCategory,
				Severity:    SeverityError,
				Description: fmt.Sprintf("Entry %s has unknown category %q", e.ID, e.CategorySnapshot),
				Date:        e.DateISO,
				EntryIDs:    []string{e.ID},
			})
		}

		h, ok := byID[e.HabitID]
		if !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanedEntry,
				Severity:    SeverityInfo,
				Description: fmt.Sprintf("Entry %s on %s belongs to deleted habit %s", e.ID, e.DateISO, e.HabitID),
				Date:        e.DateISO,
				HabitIDs:    []string{e.HabitID},
				EntryIDs:    []string{e.ID},
			})
			continue
		}

		if h.EffectivePeriodicity() == models.PeriodicityOnce {
			if _, seen := perHabit[h.ID]; !seen {
				onceOrder = append(onceOrder, h.ID)
			}
			perHabit[h.ID] = append(perHabit[h.ID], e.ID)
			continue
		}
		k := key{h.ID, e.DateISO}
		if _, seen := perDay[k]; !seen {
			dayOrder = append(dayOrder, k)
		}
		perDay[k] = append(perDay[k], e.ID)
	}

	for _, k := range dayOrder {
		if ids := perDay[k]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateEntry,
				Severity:    SeverityError,
				Description: fmt.Sprintf("Habit %q has %d entries on %s", byID[k.habit].Name, len(ids), k.day),
				Date:        k.day,
				HabitIDs:    []string{k.habit},
				EntryIDs:    ids,
			})
		}
	}
	for _, id := range onceOrder {
		if ids := perHabit[id]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictRepeatedOnce,
				Severity:    SeverityError,
				Description: fmt.Sprintf("One-off habit %q was completed %d times", byID[id].Name, len(ids)),
				HabitIDs:    []string{id},
				EntryIDs:    ids,
			})
		}
	}
	return result
}
