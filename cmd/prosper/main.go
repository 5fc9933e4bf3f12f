package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/cli/backups"
	"github.com/julianstephens/prosper/internal/cli/days"
	"github.com/julianstephens/prosper/internal/cli/entries"
	"github.com/julianstephens/prosper/internal/cli/habits"
	"github.com/julianstephens/prosper/internal/cli/system"
	"github.com/julianstephens/prosper/internal/config"
	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/errors"
	"github.com/julianstephens/prosper/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Debug    bool   `help:"Log at debug level and mirror logs to stderr."`
	DataDir  string `name:"data-dir" help:"Directory holding the local database, backups and logs."`
	Cloud    string `help:"Cloud backend: none, firestore or postgres."`
	Timezone string `help:"IANA timezone used to decide what today is."`
	Effects  string `help:"Completion effect: off, bell or desktop."`

	Init    system.InitCmd    `cmd:"" help:"Initialize prosper storage and the default habits."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations and copy local data to the cloud."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Serve   system.ServeCmd   `cmd:"" help:"Serve the HTTP API."`

	Today   days.TodayCmd   `cmd:"" help:"Show today's habits."`
	Day     days.DayCmd     `cmd:"" help:"Show the habits of a day."`
	Toggle  days.ToggleCmd  `cmd:"" help:"Mark or unmark a habit as done."`
	Radar   days.RadarCmd   `cmd:"" help:"Show category percentages for a day."`
	Streak  days.StreakCmd  `cmd:"" help:"Show the current and longest streak."`
	History days.HistoryCmd `cmd:"" help:"Show recent daily scores."`
	Summary days.SummaryCmd `cmd:"" help:"Show lifetime totals."`

	Habit  habits.HabitCmd   `cmd:"" help:"Manage the habit catalog."`
	Entry  entries.EntryCmd  `cmd:"" help:"Manage completion entries."`
	Backup backups.BackupCmd `cmd:"" help:"Manage database backups."`

	Keyring system.KeyringCmd `cmd:"" help:"Manage cloud credentials in the OS keyring."`
	Export  system.ExportCmd  `cmd:"" help:"Export habits and entries to a JSON file."`
	Import  system.ImportCmd  `cmd:"" help:"Import habits and entries from a JSON file."`
}

// Commands that open or inspect the stores themselves.
var selfLoading = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily habit tracker with a prosperity score"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)
	command := strings.Fields(kctx.Command())[0]

	cfg, err := config.Load(constants.EnvFile)
	if err != nil {
		errors.Fatal(err)
	}
	applyFlags(&cfg)
	if command != "doctor" {
		if err := cfg.Validate(); err != nil {
			errors.Fatal(err)
		}
	}

	dir, err := cfg.Dir()
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: dir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx, err := newContext(ctx, cfg, command)
	if err != nil {
		errors.Fatal(err)
	}

	if !selfLoading[command] {
		if err := appCtx.Open(); err != nil {
			errors.Fatal(err)
		}
	}

	err = kctx.Run(appCtx)
	if appCtx.Store != nil {
		if cerr := appCtx.Close(); cerr != nil {
			logger.Warn("failed to close storage", "error", cerr)
		}
	}
	if err != nil {
		stop()
		errors.Fatal(err)
	}
}

// applyFlags layers global flags over the loaded configuration.
func applyFlags(cfg *config.Config) {
	if CLI.Debug {
		cfg.Debug = true
	}
	if CLI.DataDir != "" {
		cfg.DataDir = CLI.DataDir
	}
	if CLI.Cloud != "" {
		cfg.Cloud = strings.ToLower(CLI.Cloud)
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.Effects != "" {
		cfg.Effects = strings.ToLower(CLI.Effects)
	}
}

// newContext builds the command context. Keyring commands must work before
// any cloud credentials exist, so they get a context without stores.
func newContext(ctx context.Context, cfg config.Config, command string) (*cli.Context, error) {
	if command == "keyring" {
		return &cli.Context{Ctx: ctx, Config: cfg, Out: os.Stdout, In: os.Stdin}, nil
	}
	return cli.New(ctx, cfg, os.Stdout)
}
