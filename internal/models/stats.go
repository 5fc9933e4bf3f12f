package models

// RadarData is the balance snapshot of one period: completion per category
// (0-100) and the composite prosperity score (0-100).
type RadarData struct {
	Percentages map[Category]float64 `json:"percentages"`
	Score       float64              `json:"score"`
}

// StreakInfo summarizes consecutive active days.
type StreakInfo struct {
	CurrentStreak int      `json:"currentStreak"`
	LongestStreak int      `json:"longestStreak"`
	ActiveDays    []string `json:"activeDays"`
}

// DayStats is the radar of a day together with completed and pinned counts.
type DayStats struct {
	Radar      RadarData `json:"radar"`
	EntryCount int       `json:"entryCount"`
	TotalCount int       `json:"totalCount"`
}

// DaySummary is one row of the activity history.
type DaySummary struct {
	DateISO         string `json:"dateISO"`
	CompletedTasks  int    `json:"completedTasks"`
	TotalTasks      int    `json:"totalTasks"`
	ProsperityLevel int    `json:"prosperityLevel"`
}

// Summary averages the radar across every day with activity.
type Summary struct {
	AverageRadar   RadarData `json:"averageRadar"`
	TotalDays      int       `json:"totalDays"`
	AvgTasksPerDay float64   `json:"avgTasksPerDay"`
	Level          int       `json:"level"`
}
