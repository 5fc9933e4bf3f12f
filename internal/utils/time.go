package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/prosper/internal/constants"
)

// isLocal reports whether timezone names the system timezone.
func isLocal(timezone string) bool {
	return timezone == "" || timezone == constants.DefaultTimezone
}

// LoadLocation resolves an IANA name. "" and "Local" mean the system timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if isLocal(timezone) {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// CalendarFor is NewCalendar for a timezone name.
func CalendarFor(timezone string) (Calendar, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Calendar{}, err
	}
	return NewCalendar(loc), nil
}

// midnight parses a YYYY-MM-DD day as the start of that day in loc.
func midnight(day string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(constants.DateFormat, day, loc)
}
