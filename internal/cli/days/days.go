// Package days holds the commands that show and change a single day.
package days

import (
	"errors"
	"fmt"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/tracker"
)

type TodayCmd struct {
	JSON bool `help:"Print the day as JSON."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	return showDay(ctx, "today", c.JSON)
}

type DayCmd struct {
	Date string `help:"Day to show: YYYY-MM-DD, today, yesterday or tomorrow." default:"today"`
	JSON bool   `help:"Print the day as JSON."`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	return showDay(ctx, c.Date, c.JSON)
}

func showDay(ctx *cli.Context, ref string, asJSON bool) error {
	day, err := ctx.Tracker.ResolveDay(ref)
	if err != nil {
		return err
	}
	view, err := ctx.Tracker.Day(ctx.Ctx, day)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(ctx.Out, view)
	}
	renderDay(ctx.Out, view, ctx.Tracker.Calendar())
	return nil
}

type ToggleCmd struct {
	Habit string `arg:"" help:"Habit id, name or unique name prefix."`
	Date  string `help:"Day to toggle: YYYY-MM-DD, today, yesterday or tomorrow." default:"today"`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Tracker.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
	if err != nil {
		if errors.Is(err, tracker.ErrAmbiguous) {
			return fmt.Errorf("%w; use the habit id from 'prosper habit list'", err)
		}
		return err
	}

	res, err := ctx.Tracker.ToggleEntry(ctx.Ctx, h.ID, day)
	if err != nil {
		return err
	}
	switch {
	case res.Added:
		// The completion effect has already announced it.
		if ctx.Config.Effects != constants.EffectsBell {
			ctx.Printf("Marked %q done for %s\n", h.Name, day)
		}
	case res.Removed:
		ctx.Printf("Unmarked %q for %s\n", h.Name, day)
	default:
		ctx.Printf("%q is a one-off habit already completed on %s\n", h.Name, res.Entry.DateISO)
	}
	if ctx.Degraded() {
		ctx.Println("⚠ Cloud storage unreachable; the change was saved locally only.")
	}
	return nil
}

type RadarCmd struct {
	Date string `help:"Day to score: YYYY-MM-DD, today, yesterday or tomorrow." default:"today"`
	JSON bool   `help:"Print the radar as JSON."`
}

func (c *RadarCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Tracker.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	view, err := ctx.Tracker.Day(ctx.Ctx, day)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(ctx.Out, view.Stats.Radar)
	}
	renderRadar(ctx.Out, fmt.Sprintf("Balance for %s", day), view.Stats.Radar)
	return nil
}

type StreakCmd struct {
	JSON bool `help:"Print the streak as JSON."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	info, err := ctx.Tracker.Streak(ctx.Ctx)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(ctx.Out, info)
	}
	summary, err := ctx.Tracker.Summary(ctx.Ctx)
	if err != nil {
		return err
	}
	renderStreak(ctx.Out, info, summary.Level)
	return nil
}

type HistoryCmd struct {
	Limit int  `help:"Number of days to show (0 for all)." default:"14"`
	JSON  bool `help:"Print the history as JSON."`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	days, err := ctx.Tracker.History(ctx.Ctx)
	if err != nil {
		return err
	}
	if c.Limit > 0 && len(days) > c.Limit {
		days = days[:c.Limit]
	}
	if c.JSON {
		return writeJSON(ctx.Out, days)
	}
	renderHistory(ctx.Out, days)
	return nil
}

type SummaryCmd struct {
	JSON bool `help:"Print the summary as JSON."`
}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	summary, err := ctx.Tracker.Summary(ctx.Ctx)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(ctx.Out, summary)
	}
	renderSummary(ctx.Out, summary)
	return nil
}
