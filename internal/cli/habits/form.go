package habits

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/utils"
)

// runForm is swapped in tests; huh forms need a terminal.
var runForm = func(f *huh.Form) error { return f.Run() }

type habitForm struct {
	Name        string
	Description string
	Category    models.Category
	Once        bool
	Target      string
	Days        string
	Pinned      bool
	BeforeSleep bool
}

func newHabitForm(fm *habitForm) *huh.Form {
	categories := make([]huh.Option[models.Category], 0, len(models.Categories))
	for _, c := range models.Categories {
		categories = append(categories, huh.NewOption(string(c), c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewSelect[models.Category]().
				Title("Category").
				Options(categories...).
				Value(&fm.Category),
			huh.NewConfirm().
				Title("One-off habit?").
				Value(&fm.Once),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Target day (YYYY-MM-DD, optional)").
				Value(&fm.Target).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					return utils.ValidateISO(s)
				}),
		).WithHideFunc(func() bool { return !fm.Once }),
		huh.NewGroup(
			huh.NewInput().
				Title("Weekdays (e.g. mon,wed,fri; empty for every day)").
				Value(&fm.Days).
				Validate(func(s string) error {
					_, err := cli.ParseWeekdays(s)
					return err
				}),
		).WithHideFunc(func() bool { return fm.Once }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Pin to the daily total?").
				Value(&fm.Pinned),
			huh.NewConfirm().
				Title("Before sleep?").
				Value(&fm.BeforeSleep),
		),
	).WithTheme(huh.ThemeDracula())
}

// fillInteractively asks for every field, starting from the flag values.
func (c *HabitAddCmd) fillInteractively() error {
	category, err := parseCategory(c.Category)
	if err != nil {
		category = models.CategoryBody
	}
	fm := &habitForm{
		Name:        c.Name,
		Description: c.Description,
		Category:    category,
		Once:        c.Once,
		Target:      c.Target,
		Days:        c.Days,
		Pinned:      c.Pinned,
		BeforeSleep: c.BeforeSleep,
	}
	if err := runForm(newHabitForm(fm)); err != nil {
		return fmt.Errorf("habit form cancelled: %w", err)
	}

	c.Name = fm.Name
	c.Description = fm.Description
	c.Category = string(fm.Category)
	c.Once = fm.Once
	c.Target = ""
	c.Days = ""
	if fm.Once {
		c.Target = fm.Target
	} else {
		c.Days = fm.Days
	}
	c.Pinned = fm.Pinned
	c.BeforeSleep = fm.BeforeSleep
	return nil
}
