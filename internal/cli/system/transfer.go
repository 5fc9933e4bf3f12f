package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/config"
	"github.com/julianstephens/prosper/internal/storage"
	"github.com/julianstephens/prosper/internal/storage/jsonstore"
)

// ExportCmd writes the catalog and history to a JSON file.
type ExportCmd struct {
	Path  string `arg:"" help:"Destination JSON file."`
	Force bool   `short:"f" help:"Overwrite an existing file."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	path, err := config.ExpandHome(c.Path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	habits, entries, err := ctx.Tracker.Snapshot(ctx.Ctx)
	if err != nil {
		return err
	}

	out := jsonstore.New(path)
	if err := out.Init(ctx.Ctx); err != nil {
		return err
	}
	defer out.Close()
	if err := out.SaveHabits(ctx.Ctx, habits); err != nil {
		return fmt.Errorf("failed to export habits: %w", err)
	}
	if err := out.SaveEntries(ctx.Ctx, entries); err != nil {
		return fmt.Errorf("failed to export entries: %w", err)
	}

	ctx.Printf("✓ Exported %d habits and %d entries to %s\n", len(habits), len(entries), path)
	return nil
}

// ImportCmd reads a JSON export. Records merge by id unless --replace is given.
type ImportCmd struct {
	Path    string `arg:"" help:"JSON file written by 'prosper export'."`
	Replace bool   `help:"Replace the catalog and history instead of merging."`
	Yes     bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	path, err := config.ExpandHome(c.Path)
	if err != nil {
		return err
	}
	src := jsonstore.New(path)
	if err := src.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer src.Close()

	if c.Replace && !c.Yes {
		ok, err := ctx.Confirm("Replace every habit and entry with the imported data?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Import cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	if !c.Replace {
		res, err := storage.Merge(ctx.Ctx, src, ctx.Store)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		ctx.Printf("✓ Imported %d habits and %d entries\n", res.Habits, res.Entries)
		return nil
	}

	habits, err := src.LoadHabits(ctx.Ctx)
	if err != nil {
		return err
	}
	entries, err := src.LoadEntries(ctx.Ctx)
	if err != nil {
		return err
	}
	if err := ctx.Store.SaveHabits(ctx.Ctx, habits); err != nil {
		return fmt.Errorf("failed to import habits: %w", err)
	}
	if err := ctx.Store.SaveEntries(ctx.Ctx, entries); err != nil {
		return fmt.Errorf("failed to import entries: %w", err)
	}
	ctx.Printf("✓ Replaced data with %d habits and %d entries\n", len(habits), len(entries))
	return nil
}
