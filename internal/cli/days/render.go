package days

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/stats"
	"github.com/julianstephens/prosper/internal/theme"
	"github.com/julianstephens/prosper/internal/utils"
)

const barWidth = 20

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func heading(view stats.DayView, cal utils.Calendar) string {
	weekday := ""
	if d, err := cal.ParseISO(view.DateISO); err == nil {
		weekday = d.Weekday().String()[:3]
	}
	title := view.Label
	if title != view.DateISO {
		title = fmt.Sprintf("%s · %s", view.Label, view.DateISO)
	}
	return fmt.Sprintf("%s %s", theme.Title.Render(title), theme.Subtle.Render(weekday))
}

func habitLine(h models.Habit, done bool) string {
	mark := "○"
	name := h.Name
	if done {
		mark = theme.Done.Render("✓")
		name = theme.Subtle.Render(name)
	}
	pin := " "
	if h.IsPinned {
		pin = "📌"
	}
	return fmt.Sprintf("  %s %s %s %-32s %s", mark, pin, theme.CategoryIcon(h.Category), name, theme.Category(h.Category))
}

func renderDay(w io.Writer, view stats.DayView, cal utils.Calendar) {
	fmt.Fprintf(w, "%s  %s\n\n", heading(view, cal), theme.Subtle.Render(fmt.Sprintf("level %d", view.Level)))

	if len(view.Habits) == 0 {
		fmt.Fprintln(w, theme.Subtle.Render("  Nothing scheduled."))
		fmt.Fprintln(w)
	}

	groups := []struct {
		title  string
		habits []models.Habit
		done   bool
	}{
		{"", view.Arrangement.Regular, false},
		{"Before sleep", view.Arrangement.BeforeSleep, false},
		{"Completed", view.Arrangement.Completed, true},
	}
	for _, g := range groups {
		if len(g.habits) == 0 {
			continue
		}
		if g.title != "" {
			fmt.Fprintln(w, theme.Subtle.Render("  "+g.title))
		}
		for _, h := range g.habits {
			fmt.Fprintln(w, habitLine(h, g.done))
		}
		fmt.Fprintln(w)
	}

	score := view.Stats.Radar.Score
	fmt.Fprintf(w, "  Prosperity %s %3.0f   %d/%d pinned done\n",
		theme.Bar(score, barWidth, theme.ScoreColor(score)), score,
		view.Stats.EntryCount, view.Stats.TotalCount)
}

func renderRadar(w io.Writer, title string, r models.RadarData) {
	fmt.Fprintln(w, theme.Title.Render(title))
	fmt.Fprintln(w)
	for _, c := range models.Categories {
		pct := r.Percentages[c]
		label := lipgloss.NewStyle().Width(16).Render(theme.CategoryIcon(c) + " " + string(c))
		fmt.Fprintf(w, "  %s %s %3.0f%%\n", label, theme.Bar(pct, barWidth, theme.CategoryColor(c)), pct)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Prosperity score: %s\n",
		lipgloss.NewStyle().Foreground(theme.ScoreColor(r.Score)).Bold(true).Render(fmt.Sprintf("%.0f", r.Score)))
}

func renderStreak(w io.Writer, info models.StreakInfo, level int) {
	flame := ""
	if info.CurrentStreak > 0 {
		flame = " 🔥"
	}
	fmt.Fprintf(w, "Current streak: %d day%s%s\n", info.CurrentStreak, plural(info.CurrentStreak), flame)
	fmt.Fprintf(w, "Longest streak: %d day%s\n", info.LongestStreak, plural(info.LongestStreak))
	fmt.Fprintf(w, "Active days:    %d\n", len(info.ActiveDays))
	fmt.Fprintf(w, "Level:          %d\n", level)
}

func renderHistory(w io.Writer, days []models.DaySummary) {
	if len(days) == 0 {
		fmt.Fprintln(w, "No activity yet.")
		return
	}
	fmt.Fprintf(w, "%-12s %-9s %s\n", "DATE", "DONE", "PROSPERITY")
	for _, d := range days {
		done := fmt.Sprintf("%d/%d", d.CompletedTasks, d.TotalTasks)
		level := float64(d.ProsperityLevel)
		fmt.Fprintf(w, "%-12s %-9s %s %d\n", d.DateISO, done,
			theme.Bar(level, barWidth/2, theme.ScoreColor(level)), d.ProsperityLevel)
	}
}

func renderSummary(w io.Writer, s models.Summary) {
	renderRadar(w, "Average balance", s.AverageRadar)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Active days:        %d\n", s.TotalDays)
	fmt.Fprintf(w, "  Habits per day:     %s\n", trimFloat(s.AvgTasksPerDay))
	fmt.Fprintf(w, "  Level:              %d\n", s.Level)
}

func trimFloat(f float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", math.Round(f*10)/10), ".0")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
