// Package habits manages the habit catalog from the command line.
package habits

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/scheduler"
	"github.com/julianstephens/prosper/internal/theme"
)

type HabitCmd struct {
	Add             HabitAddCmd             `cmd:"" help:"Add a new habit."`
	List            HabitListCmd            `cmd:"" help:"List habits."`
	Edit            HabitEditCmd            `cmd:"" help:"Edit an existing habit."`
	Delete          HabitDeleteCmd          `cmd:"" help:"Delete a habit. Its history is kept."`
	Pin             HabitPinCmd             `cmd:"" help:"Pin or unpin a habit."`
	RestoreDefaults HabitRestoreDefaultsCmd `cmd:"" name:"restore-defaults" help:"Replace the catalog with the default habits."`
}

type HabitAddCmd struct {
	Name        string   `arg:"" optional:"" help:"Habit name."`
	Category    string   `short:"c" help:"Body, Energy, Mind, Work, Relationships or Money." default:"Body"`
	Description string   `short:"d" help:"Optional description."`
	Once        bool     `help:"Create a one-off habit instead of a recurring one."`
	Target      string   `help:"Target day of a one-off habit (YYYY-MM-DD)."`
	Days        string   `help:"Weekdays of a recurring habit, e.g. mon,wed,fri (default: every day)."`
	Pinned      bool     `help:"Count the habit in the daily pinned total."`
	BeforeSleep bool     `name:"before-sleep" help:"Show the habit in the before-sleep group."`
	Unit        string   `help:"Unit of measure: none, min or count."`
	Min         *float64 `help:"Minimum value that counts as done."`
	Tags        []string `help:"Comma-separated tags."`
	Interactive bool     `short:"i" help:"Fill in the habit with an interactive form."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if c.Interactive {
		if err := c.fillInteractively(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("habit name is required (or use --interactive)")
	}

	draft, err := c.draft()
	if err != nil {
		return err
	}
	h, err := ctx.Tracker.AddHabit(ctx.Ctx, draft)
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s %s (%s, %s)\n", theme.CategoryIcon(h.Category), h.Name, h.Category, cli.FormatSchedule(h))
	ctx.Printf("ID: %s\n", h.ID)
	return nil
}

func (c *HabitAddCmd) draft() (models.HabitDraft, error) {
	category, err := parseCategory(c.Category)
	if err != nil {
		return models.HabitDraft{}, err
	}
	days, err := cli.ParseWeekdays(c.Days)
	if err != nil {
		return models.HabitDraft{}, err
	}

	draft := models.HabitDraft{
		Name:          c.Name,
		Category:      category,
		Periodicity:   models.PeriodicityRecurring,
		DaysOfWeek:    days,
		IsPinned:      c.Pinned,
		IsBeforeSleep: c.BeforeSleep,
		Tags:          c.Tags,
		MinThreshold:  models.FromPtr(c.Min),
	}
	if c.Description != "" {
		draft.Description = models.Some(c.Description)
	}
	if c.Once {
		draft.Periodicity = models.PeriodicityOnce
		draft.DaysOfWeek = nil
	}
	if c.Target != "" {
		if !c.Once {
			return models.HabitDraft{}, fmt.Errorf("--target only applies to one-off habits (add --once)")
		}
		draft.TargetDate = models.Some(c.Target)
	}
	switch unit := models.UnitType(c.Unit); unit {
	case "":
	case models.UnitNone, models.UnitMin, models.UnitCount:
		draft.UnitType = models.Some(unit)
	default:
		return models.HabitDraft{}, fmt.Errorf("unknown unit %q (want none, min or count)", c.Unit)
	}
	return draft, nil
}

// parseCategory matches a category name case-insensitively.
func parseCategory(s string) (models.Category, error) {
	for _, c := range models.Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return "", fmt.Errorf("unknown category %q (want one of %s)", s, strings.Join(names, ", "))
}

type HabitListCmd struct {
	Category string `short:"c" help:"Only show habits of this category."`
	JSON     bool   `help:"Print habits as JSON."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Tracker.Habits(ctx.Ctx)
	if err != nil {
		return err
	}
	if c.Category != "" {
		category, err := parseCategory(c.Category)
		if err != nil {
			return err
		}
		habits = scheduler.FilterCategory(habits, category)
	}
	scheduler.SortByOrder(habits)

	if c.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(habits)
	}

	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}
	for _, h := range habits {
		flags := ""
		if h.IsPinned {
			flags += " 📌"
		}
		if h.IsBeforeSleep {
			flags += " 🌙"
		}
		ctx.Printf("%s %-30s %-14s %-22s %s%s\n",
			theme.CategoryIcon(h.Category), h.Name, h.Category, cli.FormatSchedule(h),
			theme.Subtle.Render(h.ID), flags)
	}
	return nil
}

type HabitEditCmd struct {
	Habit       string   `arg:"" help:"Habit id, name or unique name prefix."`
	Name        *string  `help:"New name."`
	Category    *string  `short:"c" help:"New category."`
	Description *string  `short:"d" help:"New description (empty to clear)."`
	Days        *string  `help:"New weekdays (daily for every day)."`
	Once        *bool    `help:"Make the habit one-off (--once) or recurring (--once=false)."`
	Target      *string  `help:"New target day of a one-off habit (empty to clear)."`
	Pinned      *bool    `help:"Pin or unpin."`
	BeforeSleep *bool    `name:"before-sleep" help:"Move into or out of the before-sleep group."`
	Order       *int     `help:"Display order; lower sorts first."`
	Min         *float64 `help:"Minimum value that counts as done."`
	Tags        []string `help:"Replace the tags."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
	if err != nil {
		return err
	}
	patch, err := c.patch()
	if err != nil {
		return err
	}

	updated, err := ctx.Tracker.UpdateHabit(ctx.Ctx, h.ID, patch)
	if err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s (%s, %s)\n", updated.Name, updated.Category, cli.FormatSchedule(updated))
	return nil
}

func (c *HabitEditCmd) patch() (models.HabitPatch, error) {
	var p models.HabitPatch
	if c.Name != nil {
		p.Name = models.Some(*c.Name)
	}
	if c.Category != nil {
		category, err := parseCategory(*c.Category)
		if err != nil {
			return p, err
		}
		p.Category = models.Some(category)
	}
	if c.Description != nil {
		p.Description = models.Some(optionalString(*c.Description))
	}
	if c.Days != nil {
		days, err := cli.ParseWeekdays(*c.Days)
		if err != nil {
			return p, err
		}
		p.DaysOfWeek = models.Some(days)
	}
	if c.Once != nil {
		if *c.Once {
			p.Periodicity = models.Some(models.PeriodicityOnce)
		} else {
			p.Periodicity = models.Some(models.PeriodicityRecurring)
			p.TargetDate = models.Some(models.None[string]())
		}
	}
	if c.Target != nil {
		p.TargetDate = models.Some(optionalString(*c.Target))
	}
	if c.Pinned != nil {
		p.IsPinned = models.Some(*c.Pinned)
	}
	if c.BeforeSleep != nil {
		p.IsBeforeSleep = models.Some(*c.BeforeSleep)
	}
	if c.Order != nil {
		p.Order = models.Some(models.Some(*c.Order))
	}
	if c.Min != nil {
		p.MinThreshold = models.Some(models.Some(*c.Min))
	}
	if c.Tags != nil {
		p.Tags = models.Some(c.Tags)
	}
	return p, nil
}

func optionalString(s string) models.Optional[string] {
	if strings.TrimSpace(s) == "" {
		return models.None[string]()
	}
	return models.Some(s)
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id, name or unique name prefix."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete habit %q? Its history is kept.", h.Name))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}
	if err := ctx.Tracker.DeleteHabit(ctx.Ctx, h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitPinCmd struct {
	Habit string `arg:"" help:"Habit id, name or unique name prefix."`
}

func (c *HabitPinCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(ctx.Ctx, c.Habit)
	if err != nil {
		return err
	}
	updated, err := ctx.Tracker.TogglePin(ctx.Ctx, h.ID)
	if err != nil {
		return err
	}
	if updated.IsPinned {
		ctx.Printf("Pinned %s\n", updated.Name)
	} else {
		ctx.Printf("Unpinned %s\n", updated.Name)
	}
	return nil
}

type HabitRestoreDefaultsCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitRestoreDefaultsCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := ctx.Confirm("Replace every habit with the defaults? Completion history is kept.")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	habits, err := ctx.Tracker.RestoreDefaults(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Restored %d default habits\n", len(habits))
	return nil
}
