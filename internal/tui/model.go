// Package tui is the interactive day view: browse days, toggle completions
// and pin habits.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/prosper/internal/effects"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/stats"
	"github.com/julianstephens/prosper/internal/tracker"
)

type dayLoadedMsg struct {
	view stats.DayView
	err  error
}

type toggledMsg struct {
	habit  models.Habit
	result tracker.ToggleResult
	err    error
}

type pinnedMsg struct {
	habit models.Habit
	err   error
}

type Model struct {
	ctx      context.Context
	tracker  *tracker.Tracker
	keys     KeyMap
	help     help.Model
	day      string
	view     stats.DayView
	loaded   bool
	cursor   int
	status   string
	err      error
	width    int
	height   int
	quitting bool
}

// New builds the day screen. The screen owns the terminal, so completions are
// reported in the status line rather than by a printing effect.
func New(ctx context.Context, t *tracker.Tracker) Model {
	return Model{
		ctx:     ctx,
		tracker: t.WithEffect(effects.OffTerminal(t.Effect())),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		day:     t.Calendar().Today(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadDay()
}

func (m Model) loadDay() tea.Cmd {
	ctx, t, day := m.ctx, m.tracker, m.day
	return func() tea.Msg {
		view, err := t.Day(ctx, day)
		return dayLoadedMsg{view: view, err: err}
	}
}

func (m Model) toggle(h models.Habit) tea.Cmd {
	ctx, t, day := m.ctx, m.tracker, m.day
	return func() tea.Msg {
		res, err := t.ToggleEntry(ctx, h.ID, day)
		return toggledMsg{habit: h, result: res, err: err}
	}
}

func (m Model) pin(h models.Habit) tea.Cmd {
	ctx, t := m.ctx, m.tracker
	return func() tea.Msg {
		updated, err := t.TogglePin(ctx, h.ID)
		return pinnedMsg{habit: updated, err: err}
	}
}

// items lists the habits in display order; the cursor indexes into it.
func (m Model) items() []models.Habit {
	return m.view.Arrangement.All()
}

func (m Model) selected() (models.Habit, bool) {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return models.Habit{}, false
	}
	return items[m.cursor], true
}

// moveDay switches to day and reloads.
func (m Model) moveDay(day string) (Model, tea.Cmd) {
	m.day = day
	m.cursor = 0
	m.status = ""
	return m, m.loadDay()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case dayLoadedMsg:
		m.err = msg.err
		if msg.err == nil && msg.view.DateISO == m.day {
			m.view = msg.view
			m.loaded = true
			m.cursor = min(m.cursor, max(0, len(m.items())-1))
		}
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		switch {
		case msg.result.Added:
			m.status = fmt.Sprintf("✓ Marked %s", msg.habit.Name)
		case msg.result.Removed:
			m.status = fmt.Sprintf("Unmarked %s", msg.habit.Name)
		default:
			m.status = fmt.Sprintf("%s is a one-off and already done", msg.habit.Name)
		}
		return m, m.loadDay()

	case pinnedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.habit.IsPinned {
			m.status = fmt.Sprintf("Pinned %s", msg.habit.Name)
		} else {
			m.status = fmt.Sprintf("Unpinned %s", msg.habit.Name)
		}
		return m, m.loadDay()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cal := m.tracker.Calendar()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Prev):
		return m.moveDay(cal.AddDays(m.day, -1))
	case key.Matches(msg, m.keys.Next):
		return m.moveDay(cal.AddDays(m.day, 1))
	case key.Matches(msg, m.keys.Today):
		return m.moveDay(cal.Today())
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if h, ok := m.selected(); ok {
			return m, m.toggle(h)
		}
	case key.Matches(msg, m.keys.Pin):
		if h, ok := m.selected(); ok {
			return m, m.pin(h)
		}
	}
	return m, nil
}
