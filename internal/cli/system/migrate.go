package system

import (
	"fmt"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/storage"
)

// MigrateCmd brings the local schema up to date and, with a cloud backend,
// prepares the cloud store and copies the local data into it once. It runs
// without opening the stores first.
type MigrateCmd struct {
	SchemaOnly bool `name:"schema-only" help:"Only apply schema migrations to the local database."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	count, err := ctx.Local.Migrate(ctx.Ctx, func(msg string) { ctx.Println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}

	if c.SchemaOnly || ctx.Cloud == nil {
		return nil
	}
	if err := ctx.Cloud.Init(ctx.Ctx); err != nil {
		return fmt.Errorf("cloud store (%s) is unreachable, data was not copied: %w", ctx.Config.Cloud, err)
	}

	ctx.PerformAutomaticBackup()
	res, err := storage.MigrateToCloud(ctx.Ctx, ctx.Local, ctx.Cloud, ctx.Local)
	if err != nil {
		return fmt.Errorf("cloud migration failed: %w", err)
	}
	if res.Skipped {
		ctx.Printf("Local data was already copied to %s.\n", ctx.Config.Cloud)
		return nil
	}
	ctx.Printf("✓ Copied %d habits and %d entries to %s\n", res.Habits, res.Entries, ctx.Config.Cloud)
	return nil
}
