package engine

import (
	"math"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

// ComputeProgress returns the display percentage of an item as of today.
//
// Tasks fill proportionally to current/goal. Habits are binary: 100 when completed on
// today, 0 otherwise, regardless of how far along the multi-day goal they are.
func ComputeProgress(item models.Item, today string) int {
	if item.IsTask {
		return ratio(item.CurrentValue, item.GoalValue)
	}
	if item.CompletedOn(today) {
		return 100
	}
	return 0
}

// TankProgress is the aggregate long-run fill across every active habit:
// the sum of accumulated days over the sum of goals.
func TankProgress(items []models.Item) int {
	var current, goal int
	for _, item := range items {
		if !item.Active() {
			continue
		}
		current += item.CurrentValue
		goal += item.GoalValue
	}
	return ratio(current, goal)
}

func ratio(current, goal int) int {
	if goal <= 0 || current <= 0 {
		return 0
	}
	return clampPercent(math.Round(float64(current) / float64(goal) * 100))
}

func clampPercent(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 100:
		return 100
	default:
		return int(v)
	}
}
