// Package effects celebrates habit completions. Triggers are injected into the
// tracker and hold whatever resources they need between Init and Close.
package effects

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/logger"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/notifier"
	"github.com/julianstephens/prosper/internal/theme"
)

// Completion describes a habit that was just marked done.
type Completion struct {
	HabitID   string
	HabitName string
	Category  models.Category
	DateISO   string
}

// Trigger fires an effect for each completion. Fire never fails the caller;
// implementations log their own errors.
type Trigger interface {
	Init() error
	Fire(ctx context.Context, c Completion)
	Close() error
}

// New builds the trigger for an effects mode.
func New(mode string, w io.Writer) (Trigger, error) {
	switch mode {
	case constants.EffectsOff:
		return Noop{}, nil
	case constants.EffectsBell, "":
		return NewBell(w), nil
	case constants.EffectsDesktop:
		return NewDesktop(notifier.New()), nil
	}
	return nil, fmt.Errorf("unknown effects mode %q (want %s, %s or %s)", mode, constants.EffectsOff, constants.EffectsBell, constants.EffectsDesktop)
}

// OffTerminal drops triggers that print to the terminal. Screens that own the
// terminal, like the TUI, report completions themselves.
func OffTerminal(t Trigger) Trigger {
	if _, ok := t.(*Bell); ok {
		return Noop{}
	}
	return t
}

type Noop struct{}

func (Noop) Init() error                      { return nil }
func (Noop) Fire(context.Context, Completion) {}
func (Noop) Close() error                     { return nil }

// Bell rings the terminal bell and prints a coloured confirmation.
type Bell struct {
	mu    sync.Mutex
	w     io.Writer
	Quiet bool // suppress the bell character
	ready bool
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.w == nil {
		return fmt.Errorf("bell effect needs a writer")
	}
	b.ready = true
	return nil
}

func (b *Bell) Fire(_ context.Context, c Completion) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return
	}

	mark := lipgloss.NewStyle().Foreground(theme.CategoryColor(c.Category)).Bold(true).Render("✓ " + c.HabitName)
	line := fmt.Sprintf("%s %s\n", theme.CategoryIcon(c.Category), mark)
	if !b.Quiet {
		line = "\a" + line
	}
	if _, err := io.WriteString(b.w, line); err != nil {
		logger.Warn("completion effect failed", "effect", "bell", "error", err)
	}
}

func (b *Bell) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ready = false
	return nil
}

// sender is the part of the notifier the desktop effect uses.
type sender interface {
	Available() bool
	Notify(ctx context.Context, title, text string) error
}

// Desktop posts a notification to the tray app.
type Desktop struct {
	n       sender
	enabled bool
}

func NewDesktop(n sender) *Desktop {
	return &Desktop{n: n}
}

// Init disables the effect when no tray app is running; it is not an error.
func (d *Desktop) Init() error {
	d.enabled = d.n.Available()
	if !d.enabled {
		logger.Debug("tray app not running, desktop effect disabled")
	}
	return nil
}

func (d *Desktop) Fire(ctx context.Context, c Completion) {
	if !d.enabled {
		return
	}
	text := fmt.Sprintf("%s %s completed", theme.CategoryIcon(c.Category), c.HabitName)
	if err := d.n.Notify(ctx, constants.AppName, text); err != nil {
		logger.Warn("completion effect failed", "effect", "desktop", "habit", c.HabitID, "error", err)
	}
}

func (d *Desktop) Close() error {
	d.enabled = false
	return nil
}
