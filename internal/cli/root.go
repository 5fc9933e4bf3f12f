package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/julianstephens/prosper/internal/backup"
	"github.com/julianstephens/prosper/internal/config"
	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/effects"
	"github.com/julianstephens/prosper/internal/logger"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/scheduler"
	"github.com/julianstephens/prosper/internal/storage"
	"github.com/julianstephens/prosper/internal/storage/firestore"
	"github.com/julianstephens/prosper/internal/storage/postgres"
	"github.com/julianstephens/prosper/internal/storage/sqlite"
	"github.com/julianstephens/prosper/internal/tracker"
	"github.com/julianstephens/prosper/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Ctx     context.Context
	Config  config.Config
	Store   storage.Provider // Local, or a Fallback wrapping Cloud and Local
	Local   *sqlite.Store
	Cloud   storage.Provider // nil without a cloud backend
	Tracker *tracker.Tracker
	Effect  effects.Trigger
	Out     io.Writer
	In      io.Reader
}

// New wires storage, scheduling and effects from cfg. Nothing is opened yet.
func New(ctx context.Context, cfg config.Config, out io.Writer) (*Context, error) {
	cal, err := utils.CalendarFor(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	local := sqlite.NewStore(dbPath)

	var cloud storage.Provider
	switch cfg.Cloud {
	case constants.CloudFirestore:
		credsFile, err := config.ExpandHome(cfg.FirestoreCredentials)
		if err != nil {
			return nil, err
		}
		cloud = firestore.New(firestore.Config{
			ProjectID:       cfg.FirestoreProject,
			CredentialsFile: credsFile,
			CredentialsJSON: cfg.FirestoreCredentialsJSON(),
			UserID:          cfg.UserID,
		})
	case constants.CloudPostgres:
		conn, err := cfg.ResolveDBConnection()
		if err != nil {
			return nil, err
		}
		cloud = postgres.New(conn)
	}

	effect, err := effects.New(cfg.Effects, out)
	if err != nil {
		return nil, err
	}

	c := NewWithStores(ctx, local, cloud, cal, effect, out)
	c.Config = cfg
	return c, nil
}

// NewWithStores builds a Context around already constructed stores.
func NewWithStores(ctx context.Context, local *sqlite.Store, cloud storage.Provider, cal utils.Calendar, effect effects.Trigger, out io.Writer) *Context {
	var store storage.Provider = local
	if cloud != nil {
		store = storage.NewFallback(cloud, local)
	}
	if effect == nil {
		effect = effects.Noop{}
	}
	return &Context{
		Ctx:     ctx,
		Config:  config.Defaults(),
		Store:   store,
		Local:   local,
		Cloud:   cloud,
		Tracker: tracker.New(store, scheduler.New(cal), effect),
		Effect:  effect,
		Out:     out,
		In:      os.Stdin,
	}
}

// Open loads the store and prepares the completion effect.
func (c *Context) Open() error {
	if err := c.Store.Load(c.Ctx); err != nil {
		return err
	}
	if err := c.Effect.Init(); err != nil {
		logger.Warn("completion effect unavailable", "mode", c.Config.Effects, "error", err)
	}
	return nil
}

func (c *Context) Close() error {
	return errors.Join(c.Effect.Close(), c.Store.Close())
}

// Backups manages snapshots of the local database.
func (c *Context) Backups() *backup.Manager {
	return backup.NewManager(c.Local.GetConfigPath())
}

// PerformAutomaticBackup creates a backup and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, err := c.Backups().Create(c.Ctx); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Degraded reports whether a configured cloud backend could not be reached.
func (c *Context) Degraded() bool {
	f, ok := c.Store.(*storage.Fallback)
	return ok && f.Degraded()
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question on In. Anything but y or yes is a no.
func (c *Context) Confirm(question string) (bool, error) {
	c.Printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

var weekdayNames = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

var weekdays = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

// ParseWeekdays parses a comma-separated list of weekdays into 0 (Sunday)
// through 6. Names, three-letter abbreviations and numbers are accepted.
// "daily" and "all" yield nil, which schedules a habit every day.
func ParseWeekdays(s string) ([]int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "daily" || s == "all" {
		return nil, nil
	}

	days := []int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		day, ok := weekdays[part]
		if !ok {
			num, err := strconv.Atoi(part)
			if err != nil || num < 0 || num > 6 {
				return nil, fmt.Errorf("invalid weekday: %s", part)
			}
			day = num
		}
		if !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	slices.Sort(days)
	return days, nil
}

// FormatSchedule describes when a habit is due.
func FormatSchedule(h models.Habit) string {
	if h.EffectivePeriodicity() == models.PeriodicityOnce {
		if target, ok := h.TargetDate.Get(); ok {
			return "once on " + target
		}
		return "once"
	}
	if h.DaysOfWeek == nil || len(h.DaysOfWeek) == 7 {
		return "daily"
	}
	if len(h.DaysOfWeek) == 0 {
		return "never"
	}
	names := make([]string, 0, len(h.DaysOfWeek))
	for _, d := range h.DaysOfWeek {
		if d >= 0 && d < len(weekdayNames) {
			names = append(names, weekdayNames[d])
		}
	}
	return "weekly on " + strings.Join(names, ",")
}
