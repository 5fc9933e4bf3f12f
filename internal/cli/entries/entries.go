// Package entries lists and corrects logged completions.
package entries

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/stats"
	"github.com/julianstephens/prosper/internal/theme"
)

type EntryCmd struct {
	List   EntryListCmd   `cmd:"" help:"List logged completions."`
	Edit   EntryEditCmd   `cmd:"" help:"Move a completion to another day or change its value."`
	Delete EntryDeleteCmd `cmd:"" help:"Delete a completion."`
}

type EntryListCmd struct {
	From  string `help:"First day to include: YYYY-MM-DD, today, yesterday or tomorrow."`
	To    string `help:"Last day to include: YYYY-MM-DD, today, yesterday or tomorrow."`
	Habit string `help:"Only show entries of this habit (id, name or prefix)."`
	JSON  bool   `help:"Print entries as JSON."`
}

func (c *EntryListCmd) Run(ctx *cli.Context) error {
	from, to := c.From, c.To
	for _, day := range []*string{&from, &to} {
		if *day == "" {
			continue
		}
		resolved, err := ctx.Tracker.ResolveDay(*day)
		if err != nil {
			return err
		}
		*day = resolved
	}

	habits, entries, err := ctx.Tracker.Snapshot(ctx.Ctx)
	if err != nil {
		return err
	}
	entries = stats.InRange(entries, from, to)

	if c.Habit != "" {
		h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
		if err != nil {
			return err
		}
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.HabitID == h.ID {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DateISO != entries[j].DateISO {
			return entries[i].DateISO > entries[j].DateISO
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if c.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		ctx.Println("No entries found.")
		return nil
	}

	names := make(map[string]string, len(habits))
	for _, h := range habits {
		names[h.ID] = h.Name
	}
	for _, e := range entries {
		name, ok := names[e.HabitID]
		if !ok {
			name = theme.Subtle.Render("(deleted habit)")
		}
		value := ""
		if v, ok := e.UnitValue.Get(); ok {
			value = fmt.Sprintf(" = %g", v)
		}
		ctx.Printf("%s  %s %-30s%s  %s\n", e.DateISO, theme.CategoryIcon(e.CategorySnapshot), name, value, theme.Subtle.Render(e.ID))
	}
	return nil
}

type EntryEditCmd struct {
	ID    string   `arg:"" help:"Entry id."`
	Date  string   `help:"New day: YYYY-MM-DD, today, yesterday or tomorrow."`
	Value *float64 `help:"Measured value (minutes or count)."`
	Clear bool     `help:"Remove the measured value."`
}

func (c *EntryEditCmd) Run(ctx *cli.Context) error {
	var patch models.EntryPatch
	if c.Date != "" {
		day, err := ctx.Tracker.ResolveDay(c.Date)
		if err != nil {
			return err
		}
		patch.DateISO = models.Some(day)
	}
	switch {
	case c.Clear && c.Value != nil:
		return fmt.Errorf("--value and --clear cannot be combined")
	case c.Clear:
		patch.UnitValue = models.Some(models.None[float64]())
	case c.Value != nil:
		patch.UnitValue = models.Some(models.Some(*c.Value))
	}

	e, err := ctx.Tracker.UpdateEntry(ctx.Ctx, c.ID, patch)
	if err != nil {
		return err
	}
	ctx.Printf("Updated entry %s (%s)\n", e.ID, e.DateISO)
	return nil
}

type EntryDeleteCmd struct {
	ID string `arg:"" help:"Entry id."`
}

func (c *EntryDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Tracker.DeleteEntry(ctx.Ctx, c.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted entry %s\n", c.ID)
	return nil
}
