package firestore

import (
	"cmp"
	"slices"
	"time"

	"github.com/julianstephens/prosper/internal/models"
)

// habitDoc is the Firestore shape of a habit. Optional fields are pointers so
// absent values are omitted from the document. Documents written by other
// clients may lack a position or carry createdAt as epoch milliseconds.
type habitDoc struct {
	ID            string    `firestore:"id"`
	Name          string    `firestore:"name"`
	Description   *string   `firestore:"description,omitempty"`
	Category      string    `firestore:"category"`
	Periodicity   string    `firestore:"periodicity"`
	EveryDay      bool      `firestore:"everyDay"`
	DaysOfWeek    []int     `firestore:"daysOfWeek"`
	TargetDate    *string   `firestore:"targetDate,omitempty"`
	IsPinned      bool      `firestore:"isPinned"`
	IsBeforeSleep bool      `firestore:"isBeforeSleep"`
	Order         *int      `firestore:"order,omitempty"`
	UnitType      *string   `firestore:"unitType,omitempty"`
	MinThreshold  *float64  `firestore:"minThreshold,omitempty"`
	Tags          []string  `firestore:"tags,omitempty"`
	Position      *int      `firestore:"position,omitempty"`
	CreatedAt     any       `firestore:"createdAt"`
}

type entryDoc struct {
	ID               string    `firestore:"id"`
	HabitID          string    `firestore:"habitId"`
	DateISO          string    `firestore:"dateISO"`
	Timestamp        time.Time `firestore:"timestamp"`
	CategorySnapshot string    `firestore:"categorySnapshot"`
	UnitValue        *float64  `firestore:"unitValue,omitempty"`
}

type metaDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func toHabitDoc(h models.Habit, position int) habitDoc {
	doc := habitDoc{
		ID:            h.ID,
		Name:          h.Name,
		Description:   h.Description.Ptr(),
		Category:      string(h.Category),
		Periodicity:   string(h.EffectivePeriodicity()),
		EveryDay:      h.DaysOfWeek == nil,
		DaysOfWeek:    h.DaysOfWeek,
		TargetDate:    h.TargetDate.Ptr(),
		IsPinned:      h.IsPinned,
		IsBeforeSleep: h.IsBeforeSleep,
		Order:         h.Order.Ptr(),
		MinThreshold:  h.MinThreshold.Ptr(),
		Tags:          h.Tags,
		Position:      &position,
		CreatedAt:     h.CreatedAt.UTC(),
	}
	if u, ok := h.UnitType.Get(); ok {
		s := string(u)
		doc.UnitType = &s
	}
	if doc.DaysOfWeek == nil {
		doc.DaysOfWeek = []int{}
	}
	return doc
}

func fromHabitDoc(doc habitDoc) models.Habit {
	h := models.Habit{
		ID:            doc.ID,
		Name:          doc.Name,
		Description:   models.FromPtr(doc.Description),
		Category:      models.Category(doc.Category),
		Periodicity:   models.Periodicity(doc.Periodicity),
		TargetDate:    models.FromPtr(doc.TargetDate),
		IsPinned:      doc.IsPinned,
		IsBeforeSleep: doc.IsBeforeSleep,
		Order:         models.FromPtr(doc.Order),
		MinThreshold:  models.FromPtr(doc.MinThreshold),
		Tags:          doc.Tags,
		CreatedAt:     decodeTime(doc.CreatedAt),
	}
	if !doc.EveryDay {
		h.DaysOfWeek = append([]int{}, doc.DaysOfWeek...)
	}
	if doc.UnitType != nil {
		h.UnitType = models.Some(models.UnitType(*doc.UnitType))
	}
	return h
}

// decodeTime accepts a Firestore timestamp, epoch milliseconds or an RFC 3339
// string. Anything else decodes as the zero time.
func decodeTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case int64:
		return time.UnixMilli(t).UTC()
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// sortHabitDocs orders docs by position, keeping documents without one last
// in their read order.
func sortHabitDocs(docs []habitDoc) {
	slices.SortStableFunc(docs, func(a, b habitDoc) int {
		switch {
		case a.Position == nil && b.Position == nil:
			return 0
		case a.Position == nil:
			return 1
		case b.Position == nil:
			return -1
		}
		return cmp.Compare(*a.Position, *b.Position)
	})
}

func toEntryDoc(e models.Entry) entryDoc {
	return entryDoc{
		ID:               e.ID,
		HabitID:          e.HabitID,
		DateISO:          e.DateISO,
		Timestamp:        e.Timestamp.UTC(),
		CategorySnapshot: string(e.CategorySnapshot),
		UnitValue:        e.UnitValue.Ptr(),
	}
}

func fromEntryDoc(doc entryDoc) models.Entry {
	return models.Entry{
		ID:               doc.ID,
		HabitID:          doc.HabitID,
		DateISO:          doc.DateISO,
		Timestamp:        doc.Timestamp,
		CategorySnapshot: models.Category(doc.CategorySnapshot),
		UnitValue:        models.FromPtr(doc.UnitValue),
	}
}
