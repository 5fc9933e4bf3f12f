// Package system holds setup, maintenance and long-running commands.
package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/prosper/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Delete the local database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Local.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Local.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return err
	}
	ctx.Printf("Initialized prosper storage at: %s\n", ctx.Local.GetConfigPath())
	if ctx.Degraded() {
		ctx.Println("⚠️  Cloud store unreachable; initialized the local store only.")
	}

	habits, err := ctx.Tracker.InitializeHabits(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Printf("%d habits in the catalog\n", len(habits))
	return nil
}
