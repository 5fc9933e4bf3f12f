package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/prosper/internal/constants"
)

// Calendar does day arithmetic on ISO calendar-day strings (YYYY-MM-DD) in a
// fixed location. Day boundaries follow the wall clock of that location, never UTC.
//
// None of the methods fail: a malformed ISO string yields -1 from DayOfWeek, is
// returned unchanged by AddDays, counts as offset 0 and is echoed by
// LabelForOffset. Validate at the boundary with ValidateISO.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar returns a calendar for loc using the system clock. A nil loc means time.Local.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{loc: loc, now: time.Now}
}

// LocalCalendar returns a calendar in the system timezone.
func LocalCalendar() Calendar {
	return NewCalendar(time.Local)
}

// WithClock returns a copy of c that reads the current time from now.
func (c Calendar) WithClock(now func() time.Time) Calendar {
	c.now = now
	return c
}

// Location returns the calendar's timezone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Now returns the current time in the calendar's location.
func (c Calendar) Now() time.Time {
	if c.now == nil {
		return time.Now().In(c.Location())
	}
	return c.now().In(c.Location())
}

// ToISO formats t as YYYY-MM-DD using its local year, month and day.
func (c Calendar) ToISO(t time.Time) string {
	return t.In(c.Location()).Format(constants.DateFormat)
}

// Today returns the current local day.
func (c Calendar) Today() string {
	return c.ToISO(c.Now())
}

// ParseISO returns local midnight of the given day.
func (c Calendar) ParseISO(iso string) (time.Time, error) {
	return midnight(iso, c.Location())
}

// ValidateISO reports whether iso is a well-formed calendar day.
func ValidateISO(iso string) error {
	if _, err := time.Parse(constants.DateFormat, iso); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", iso)
	}
	return nil
}

// DayOfWeek returns 0 (Sunday) through 6 (Saturday), or -1 for a malformed day.
func (c Calendar) DayOfWeek(iso string) int {
	t, err := c.ParseISO(iso)
	if err != nil {
		return -1
	}
	return int(t.Weekday())
}

// AddDays moves iso by n calendar days.
func (c Calendar) AddDays(iso string, n int) string {
	t, err := c.ParseISO(iso)
	if err != nil {
		return iso
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat)
}

// OffsetFromToday returns the signed number of calendar days from today to iso.
func (c Calendar) OffsetFromToday(iso string) int {
	return DaysBetween(c.Today(), iso)
}

// LabelForOffset names days near today and formats the rest as a short date.
func (c Calendar) LabelForOffset(iso string) string {
	t, err := c.ParseISO(iso)
	if err != nil {
		return iso
	}
	switch c.OffsetFromToday(iso) {
	case 0:
		return constants.LabelToday
	case -1:
		return constants.LabelYesterday
	case 1:
		return constants.LabelTomorrow
	}
	return t.Format(constants.DisplayDateFormat)
}

// DaysBetween returns the number of calendar days from a to b. Both days are
// compared as UTC dates so daylight saving shifts never produce partial days.
func DaysBetween(a, b string) int {
	ta, errA := time.Parse(constants.DateFormat, a)
	tb, errB := time.Parse(constants.DateFormat, b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
