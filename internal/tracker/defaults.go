package tracker

import "github.com/julianstephens/prosper/internal/models"

type defaultHabit struct {
	name        string
	description string
	category    models.Category
}

// DefaultHabits seeds a new catalog. Every default is a pinned recurring
// habit due every day, ordered by its position here.
var DefaultHabits = []defaultHabit{
	{"Wind down", "No screens for at least 30 minutes before bed.", models.CategoryEnergy},
	{"Sleep 6-8h", "Give body and mind enough time to recover.", models.CategoryEnergy},
	{"Plan the day", "Write down today's essential tasks.", models.CategoryMind},
	{"Visualize success", "Close your eyes and picture your goal already reached.", models.CategoryMind},
	{"Gratitude (3 things)", "Consciously name three things you are grateful for today.", models.CategoryMind},
	{"Sharpen a key skill", "Learn something that raises your personal or professional value.", models.CategoryWork},
	{"Strategic step", "Take one concrete action toward your main goal.", models.CategoryWork},
	{"Review finances", "Check income and spending to stay in control.", models.CategoryMoney},
	{"Skip the impulse buy", "Pass on one purchase you do not need.", models.CategoryMoney},
	{"Money micro-lesson", "Learn something new about saving, investing or budgeting.", models.CategoryMoney},
	{"Real connection", "Talk with someone or share a meaningful moment.", models.CategoryRelationships},
	{"Act of service", "Help someone without expecting anything back.", models.CategoryRelationships},
	{"Quality time", "Give your full attention to the people who matter to you.", models.CategoryRelationships},
	{"No complaints", "Go the whole day without complaining.", models.CategoryMind},
	{"Good intentions", "Wish no one ill.", models.CategoryMind},
	{"Read (15 min)", "Read a book for at least 15 minutes.", models.CategoryMind},
	{"Move (20 min)", "At least 20 minutes of physical activity, even a walk.", models.CategoryBody},
	{"Shower", "Wash your whole body.", models.CategoryBody},
	{"Brush teeth", "Brush your teeth.", models.CategoryBody},
	{"Clean lungs", "Do not smoke all day.", models.CategoryBody},
	{"Zero alcohol", "Stay off alcohol to keep your body clear and focused.", models.CategoryBody},
}

// defaultCatalog builds fresh habits from DefaultHabits.
func (t *Tracker) defaultCatalog() []models.Habit {
	now := t.cal.Now()
	habits := make([]models.Habit, len(DefaultHabits))
	for i, d := range DefaultHabits {
		habits[i] = models.Habit{
			ID:          t.newID(),
			Name:        d.name,
			Description: models.Some(d.description),
			Category:    d.category,
			Periodicity: models.PeriodicityRecurring,
			IsPinned:    true,
			Order:       models.Some(i),
			CreatedAt:   now,
		}
	}
	return habits
}
