// Package streak derives consecutive-activity statistics and the user level
// from the entry history.
package streak

import (
	"sort"

	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/utils"
)

// Level counts the distinct days on which at least one entry was logged on the
// day it counts for. Backdated entries do not raise the level.
func Level(entries []models.Entry, cal utils.Calendar) int {
	days := make(map[string]struct{})
	for _, e := range entries {
		if cal.ToISO(e.Timestamp) == e.DateISO {
			days[e.DateISO] = struct{}{}
		}
	}
	return len(days)
}

// ActiveDays returns the sorted distinct days that have at least one entry.
func ActiveDays(entries []models.Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	days := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.DateISO]; ok {
			continue
		}
		seen[e.DateISO] = struct{}{}
		days = append(days, e.DateISO)
	}
	sort.Strings(days)
	return days
}

// Calculate returns the current and longest streaks of active days.
//
// The current streak counts back from today when today is active, otherwise
// from yesterday, and never looks further back than a year. A day without
// activity yet does not break a streak that ran through yesterday.
func Calculate(entries []models.Entry, cal utils.Calendar) models.StreakInfo {
	days := ActiveDays(entries)
	if len(days) == 0 {
		return models.StreakInfo{ActiveDays: []string{}}
	}

	active := make(map[string]bool, len(days))
	for _, d := range days {
		active[d] = true
	}

	current := currentStreak(active, cal)
	longest := max(current, longestRun(days))

	return models.StreakInfo{
		CurrentStreak: current,
		LongestStreak: longest,
		ActiveDays:    days,
	}
}

func currentStreak(active map[string]bool, cal utils.Calendar) int {
	today := cal.Today()

	start := 0
	if !active[today] {
		start = 1
	}

	count := 0
	for offset := start; offset < constants.StreakLookbackDays; offset++ {
		if !active[cal.AddDays(today, -offset)] {
			break
		}
		count++
	}
	return count
}

// longestRun finds the longest run of consecutive days in sorted, distinct days.
func longestRun(days []string) int {
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if utils.DaysBetween(days[i-1], days[i]) == 1 {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}
