package constants

const (
	// CompletionWeight and BalanceWeight blend the prosperity score. They must sum to 1.0.
	CompletionWeight = 0.8
	BalanceWeight    = 0.2

	// MaxCategoryStdDev is the spread treated as fully unbalanced (all activity in one category).
	MaxCategoryStdDev = 40.0

	// MaxPercentage caps category completion and the prosperity score.
	MaxPercentage = 100.0

	// StreakLookbackDays bounds the backward walk of the current streak.
	StreakLookbackDays = 365
)

func init() {
	if CompletionWeight+BalanceWeight != 1.0 {
		panic("CompletionWeight and BalanceWeight must sum to 1.0")
	}
}
