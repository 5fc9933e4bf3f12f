package models

import "time"

// Category is one of the six life areas used as the scoring axis.
type Category string

const (
	CategoryBody          Category = "Body"
	CategoryEnergy        Category = "Energy"
	CategoryMind          Category = "Mind"
	CategoryWork          Category = "Work"
	CategoryRelationships Category = "Relationships"
	CategoryMoney         Category = "Money"
)

// Categories lists every category in radar axis order.
var Categories = []Category{
	CategoryBody,
	CategoryEnergy,
	CategoryWork,
	CategoryMoney,
	CategoryRelationships,
	CategoryMind,
}

// Valid reports whether c is one of the six known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Periodicity string

const (
	PeriodicityRecurring Periodicity = "recurring"
	PeriodicityOnce      Periodicity = "once"

	// periodicityDaily is the value older catalogs stored for recurring habits.
	periodicityDaily Periodicity = "daily"
)

// Valid reports whether p is a known periodicity. The empty value is accepted
// and means recurring.
func (p Periodicity) Valid() bool {
	switch p {
	case "", PeriodicityRecurring, PeriodicityOnce, periodicityDaily:
		return true
	}
	return false
}

type UnitType string

const (
	UnitNone  UnitType = "none"
	UnitMin   UnitType = "min"
	UnitCount UnitType = "count"
)

// AllDays is the schedule of a recurring habit without an explicit weekday set.
var AllDays = []int{0, 1, 2, 3, 4, 5, 6}

// Habit represents a trackable activity definition
type Habit struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   Optional[string]   `json:"description,omitzero"`
	Category      Category           `json:"category"`
	Periodicity   Periodicity        `json:"periodicity,omitempty"`
	DaysOfWeek    []int              `json:"daysOfWeek"`           // nil means every day, empty means never
	TargetDate    Optional[string]   `json:"targetDate,omitzero"`  // YYYY-MM-DD, once habits only
	IsPinned      bool               `json:"isPinned"`
	IsBeforeSleep bool               `json:"isBeforeSleep"`
	Order         Optional[int]      `json:"order,omitzero"`
	UnitType      Optional[UnitType] `json:"unitType,omitzero"`
	MinThreshold  Optional[float64]  `json:"minThreshold,omitzero"`
	Tags          []string           `json:"tags,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// EffectivePeriodicity resolves the stored periodicity, treating the empty and
// legacy "daily" values as recurring.
func (h Habit) EffectivePeriodicity() Periodicity {
	if h.Periodicity == PeriodicityOnce {
		return PeriodicityOnce
	}
	return PeriodicityRecurring
}

// Schedule returns the weekdays a recurring habit is due on.
func (h Habit) Schedule() []int {
	if h.DaysOfWeek == nil {
		return AllDays
	}
	return h.DaysOfWeek
}

// HabitDraft is the input for creating a habit. ID and CreatedAt are assigned on creation.
type HabitDraft struct {
	Name          string
	Description   Optional[string]
	Category      Category
	Periodicity   Periodicity
	DaysOfWeek    []int
	TargetDate    Optional[string]
	IsPinned      bool
	IsBeforeSleep bool
	Order         Optional[int]
	UnitType      Optional[UnitType]
	MinThreshold  Optional[float64]
	Tags          []string
}

// HabitPatch is a partial habit update. An absent field leaves the habit
// unchanged. Fields that may be removed from a habit are doubly optional:
// Some(None()) clears them.
type HabitPatch struct {
	Name          Optional[string]
	Description   Optional[Optional[string]]
	Category      Optional[Category]
	Periodicity   Optional[Periodicity]
	DaysOfWeek    Optional[[]int]
	TargetDate    Optional[Optional[string]]
	IsPinned      Optional[bool]
	IsBeforeSleep Optional[bool]
	Order         Optional[Optional[int]]
	UnitType      Optional[Optional[UnitType]]
	MinThreshold  Optional[Optional[float64]]
	Tags          Optional[[]string]
}

// Apply returns a copy of h with the patch applied.
func (p HabitPatch) Apply(h Habit) Habit {
	if v, ok := p.Name.Get(); ok {
		h.Name = v
	}
	if v, ok := p.Description.Get(); ok {
		h.Description = v
	}
	if v, ok := p.Category.Get(); ok {
		h.Category = v
	}
	if v, ok := p.Periodicity.Get(); ok {
		h.Periodicity = v
	}
	if v, ok := p.DaysOfWeek.Get(); ok {
		h.DaysOfWeek = v
	}
	if v, ok := p.TargetDate.Get(); ok {
		h.TargetDate = v
	}
	if v, ok := p.IsPinned.Get(); ok {
		h.IsPinned = v
	}
	if v, ok := p.IsBeforeSleep.Get(); ok {
		h.IsBeforeSleep = v
	}
	if v, ok := p.Order.Get(); ok {
		h.Order = v
	}
	if v, ok := p.UnitType.Get(); ok {
		h.UnitType = v
	}
	if v, ok := p.MinThreshold.Get(); ok {
		h.MinThreshold = v
	}
	if v, ok := p.Tags.Get(); ok {
		h.Tags = v
	}
	return h
}
