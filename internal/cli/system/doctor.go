package system

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/keyring"
	"github.com/julianstephens/prosper/internal/validation"
)

type DoctorCmd struct{}

// warningError marks a check result that is reported but does not fail the run.
type warningError struct{ msg string }

func (w *warningError) Error() string { return w.msg }

func warning(format string, args ...any) error {
	return &warningError{msg: fmt.Sprintf(format, args...)}
}

type diagnostics struct {
	ctx      *cli.Context
	hasError bool
}

func (d *diagnostics) report(name string, err error) {
	var warn *warningError
	switch {
	case err == nil:
		d.ctx.Printf("✓ %s: OK\n", name)
	case errors.As(err, &warn):
		d.ctx.Printf("⚠ %s: WARNING\n", name)
		d.ctx.Printf("   %s\n", warn.msg)
	default:
		d.ctx.Printf("❌ %s: FAIL\n", name)
		d.ctx.Printf("   Error: %v\n", err)
		d.hasError = true
	}
}

func (d *diagnostics) skip(name, reason string) {
	d.ctx.Printf("⊘ %s: SKIPPED (%s)\n", name, reason)
}

// Run does not expect the stores to be open.
func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	d := &diagnostics{ctx: ctx}

	d.report("Configuration", ctx.Config.Validate())
	d.report("Clock/timezone", checkClockTimezone(ctx))

	dbErr := checkDBReachable(ctx)
	d.report("Local database reachable", dbErr)
	if dbErr == nil {
		d.report("Schema version", checkSchemaVersion(ctx))
	} else {
		d.skip("Schema version", "database not reachable")
	}

	if ctx.Cloud == nil {
		d.skip("Cloud store", "not configured")
	} else {
		d.report("Cloud store ("+ctx.Config.Cloud+")", checkCloud(ctx))
	}

	d.report("Backups present", checkBackupsPresent(ctx))
	d.report("OS keyring", checkKeyring())

	if dbErr == nil {
		notes, err := checkValidation(ctx)
		d.report("Data validation", err)
		for _, n := range notes {
			ctx.Printf("   ℹ %s\n", n)
		}
	} else {
		d.skip("Data validation", "database not reachable")
	}

	ctx.Println()
	if d.hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if _, err := ctx.Config.Location(); err != nil {
		return err
	}
	now := ctx.Tracker.Calendar().Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Local.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	db := ctx.Local.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRowContext(ctx.Ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Local.SchemaVersion(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d - run 'prosper migrate'", current, latest)
	}
	return nil
}

// checkCloud only warns: commands keep working offline against the local store.
func checkCloud(ctx *cli.Context) error {
	if err := ctx.Cloud.Load(ctx.Ctx); err != nil {
		return warning("unreachable, prosper will run in offline mode: %v", err)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := ctx.Backups().List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return warning("no backups found - consider creating one with 'prosper backup create'")
	}
	return nil
}

func checkKeyring() error {
	if !keyring.IsAvailable() {
		return warning("OS keyring is not available; use environment variables for cloud credentials")
	}
	return nil
}

// checkValidation fails on error-level conflicts and returns the
// informational ones as notes.
func checkValidation(ctx *cli.Context) ([]string, error) {
	result, err := ctx.Tracker.Validate(ctx.Ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	var notes, problems []string
	for _, c := range result.Conflicts {
		if c.Severity == validation.SeverityError {
			problems = append(problems, c.Description)
		} else {
			notes = append(notes, c.Description)
		}
	}
	if len(problems) > 0 {
		return notes, fmt.Errorf("%d problem(s) found:\n   - %s", len(problems), strings.Join(problems, "\n   - "))
	}
	return notes, nil
}
