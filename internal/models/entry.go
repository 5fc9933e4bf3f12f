package models

import "time"

// Entry records a single completion of a habit on a calendar day
type Entry struct {
	ID               string            `json:"id"`
	HabitID          string            `json:"habitId"`
	DateISO          string            `json:"dateISO"`   // YYYY-MM-DD the completion counts for
	Timestamp        time.Time         `json:"timestamp"` // when the entry was actually logged
	CategorySnapshot Category          `json:"categorySnapshot"`
	UnitValue        Optional[float64] `json:"unitValue,omitzero"`
}

// EntryPatch is a partial entry update.
type EntryPatch struct {
	DateISO   Optional[string]
	UnitValue Optional[Optional[float64]]
}

// Apply returns a copy of e with the patch applied.
func (p EntryPatch) Apply(e Entry) Entry {
	if v, ok := p.DateISO.Get(); ok {
		e.DateISO = v
	}
	if v, ok := p.UnitValue.Get(); ok {
		e.UnitValue = v
	}
	return e
}
