// Package radar scores a set of completions against the pinned habits of the
// same period: a completion percentage per category and a composite
// prosperity score that blends overall completion with cross-category balance.
package radar

import (
	"math"

	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/models"
)

// ZeroPercentages returns every category at 0.
func ZeroPercentages() map[models.Category]float64 {
	p := make(map[models.Category]float64, len(models.Categories))
	for _, cat := range models.Categories {
		p[cat] = 0
	}
	return p
}

// PinnedCounts counts pinned habits per category.
func PinnedCounts(habits []models.Habit) map[models.Category]int {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, h := range habits {
		if h.IsPinned {
			counts[h.Category]++
		}
	}
	return counts
}

// CategoryCounts counts entries per category snapshot.
func CategoryCounts(entries []models.Entry) map[models.Category]int {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, e := range entries {
		counts[e.CategorySnapshot]++
	}
	return counts
}

// CategoryCompletion is the completion percentage of one category. Only pinned
// habits form the denominator; a category without pinned habits scores 100 as
// soon as it has any completion.
func CategoryCompletion(cat models.Category, entries []models.Entry, habits []models.Habit) float64 {
	completed := CategoryCounts(entries)[cat]
	total := PinnedCounts(habits)[cat]
	return completion(completed, total)
}

func completion(completed, total int) float64 {
	if total == 0 {
		if completed > 0 {
			return constants.MaxPercentage
		}
		return 0
	}
	return math.Min(constants.MaxPercentage, float64(completed)/float64(total)*constants.MaxPercentage)
}

// Percentages computes the completion percentage of every category.
func Percentages(entries []models.Entry, habits []models.Habit) map[models.Category]float64 {
	completed := CategoryCounts(entries)
	pinned := PinnedCounts(habits)

	p := make(map[models.Category]float64, len(models.Categories))
	for _, cat := range models.Categories {
		p[cat] = completion(completed[cat], pinned[cat])
	}
	return p
}

// BalanceScore folds category percentages into a 0-100 prosperity score:
// 80% mean completion plus 20% balance, where balance falls linearly from 100
// at zero spread to 0 at a population standard deviation of 40.
// Missing categories count as 0.
func BalanceScore(percentages map[models.Category]float64) float64 {
	values := make([]float64, len(models.Categories))
	var total float64
	for i, cat := range models.Categories {
		values[i] = percentages[cat]
		total += values[i]
	}
	if total == 0 {
		return 0
	}

	n := float64(len(values))
	mean := total / n

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / n)

	balance := math.Max(0, constants.MaxPercentage-(stddev/constants.MaxCategoryStdDev)*constants.MaxPercentage)
	score := mean*constants.CompletionWeight + balance*constants.BalanceWeight

	return math.Max(0, math.Min(constants.MaxPercentage, score))
}

// Compute returns the radar of entries against habits. With no habits, or no
// pinned habits, every value is 0.
func Compute(entries []models.Entry, habits []models.Habit) models.RadarData {
	if !anyPinned(habits) {
		return models.RadarData{Percentages: ZeroPercentages()}
	}

	p := Percentages(entries, habits)
	return models.RadarData{
		Percentages: p,
		Score:       BalanceScore(p),
	}
}

// Average returns the per-category mean of several radars and the mean of their scores.
func Average(radars []models.RadarData) models.RadarData {
	avg := models.RadarData{Percentages: ZeroPercentages()}
	if len(radars) == 0 {
		return avg
	}
	n := float64(len(radars))
	for _, r := range radars {
		for _, cat := range models.Categories {
			avg.Percentages[cat] += r.Percentages[cat] / n
		}
		avg.Score += r.Score / n
	}
	return avg
}

func anyPinned(habits []models.Habit) bool {
	for _, h := range habits {
		if h.IsPinned {
			return true
		}
	}
	return false
}
