package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/theme"
)

const barWidth = 24

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString(theme.Subtle.Render("Loading..."))
	} else {
		b.WriteString(m.viewHabits())
		b.WriteString("\n")
		b.WriteString(m.viewScore())
	}

	b.WriteString("\n\n")
	switch {
	case m.err != nil:
		b.WriteString(theme.Danger.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(theme.Done.Render(m.status))
	}

	return theme.Doc.Render(lipgloss.JoinVertical(lipgloss.Left, b.String(), m.help.View(m.keys)))
}

func (m Model) viewHeader() string {
	label := m.view.Label
	if !m.loaded || m.view.DateISO != m.day {
		label = m.day
	}
	title := label
	if label != m.day {
		title = fmt.Sprintf("%s · %s", label, m.day)
	}
	weekday := ""
	if d, err := m.tracker.Calendar().ParseISO(m.day); err == nil {
		weekday = d.Weekday().String()
	}
	return fmt.Sprintf("%s  %s %s", theme.Title.Render("prosper"), title, theme.Subtle.Render(weekday))
}

func (m Model) viewHabits() string {
	if len(m.view.Habits) == 0 {
		return theme.Subtle.Render("Nothing scheduled for this day.") + "\n"
	}

	var b strings.Builder
	idx := 0
	groups := []struct {
		title  string
		habits []models.Habit
		done   bool
	}{
		{"", m.view.Arrangement.Regular, false},
		{"Before sleep", m.view.Arrangement.BeforeSleep, false},
		{"Completed", m.view.Arrangement.Completed, true},
	}
	for _, g := range groups {
		if len(g.habits) == 0 {
			continue
		}
		if g.title != "" {
			b.WriteString(theme.Subtle.Render(g.title) + "\n")
		}
		for _, h := range g.habits {
			b.WriteString(m.habitLine(h, g.done, idx == m.cursor) + "\n")
			idx++
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) habitLine(h models.Habit, done, selected bool) string {
	mark := "[ ]"
	if done {
		mark = theme.Done.Render("[✓]")
	}
	pin := "  "
	if h.IsPinned {
		pin = "📌"
	}
	line := fmt.Sprintf("%s %s %s %s", mark, pin, theme.CategoryIcon(h.Category), h.Name)
	if selected {
		return theme.Selected.Render("> " + line)
	}
	return "  " + line
}

func (m Model) viewScore() string {
	score := m.view.Stats.Radar.Score
	return fmt.Sprintf("Prosperity %s %3.0f   %d/%d pinned done   level %d",
		theme.Bar(score, barWidth, theme.ScoreColor(score)), score,
		m.view.Stats.EntryCount, m.view.Stats.TotalCount, m.view.Level)
}
