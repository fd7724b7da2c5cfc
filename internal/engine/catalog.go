package engine

import (
	"math"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

// Achievement is one entry of the static catalog.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Level       constants.AchievementLevel
	// Check reports whether the milestone is reached.
	Check func(models.Stats) bool
	// Progress returns partial progress towards the milestone. Nil means all-or-nothing.
	Progress func(models.Stats) float64
}

// Evaluate returns the predicate result and the clamped 0-100 progress for stats.
func (a Achievement) Evaluate(stats models.Stats) (bool, int) {
	ok := a.Check(stats)
	switch {
	case a.Progress != nil:
		return ok, clampPercent(math.Round(a.Progress(stats)))
	case ok:
		return true, constants.ProgressUnlocked
	default:
		return false, 0
	}
}

func streakAtLeast(n int) func(models.Stats) bool {
	return func(s models.Stats) bool { return s.Streak >= n }
}

func streakProgress(n int) func(models.Stats) float64 {
	return func(s models.Stats) float64 { return float64(s.Streak) / float64(n) * 100 }
}

var catalog = []Achievement{
	{
		ID:          constants.AchievementFirstHabit,
		Name:        "First Step",
		Description: "Create your first habit",
		Level:       constants.LevelBronze,
		Check:       func(s models.Stats) bool { return s.HabitsCount >= 1 },
	},
	{
		ID:          constants.AchievementFirstCheck,
		Name:        "First Check",
		Description: "Complete a habit for the first time",
		Level:       constants.LevelBronze,
		Check:       func(s models.Stats) bool { return s.TotalHabitsCompleted >= 1 },
	},
	{
		ID:          constants.AchievementModeOn,
		Name:        "Mode On",
		Description: "Keep a 2-day streak",
		Level:       constants.LevelBronze,
		Check:       streakAtLeast(2),
	},
	{
		ID:          constants.AchievementNoPause,
		Name:        "No Pause",
		Description: "Keep a 5-day streak",
		Level:       constants.LevelBronze,
		Check:       streakAtLeast(5),
	},
	{
		ID:          constants.AchievementDiscipline,
		Name:        "Discipline",
		Description: "Complete 10 habit days in total",
		Level:       constants.LevelSilver,
		Check:       func(s models.Stats) bool { return s.TotalHabitsCompleted >= 10 },
		Progress:    func(s models.Stats) float64 { return float64(s.TotalHabitsCompleted) / 10 * 100 },
	},
	{
		ID:          constants.AchievementRightRhythm,
		Name:        "Right Rhythm",
		Description: "Keep a 10-day streak",
		Level:       constants.LevelSilver,
		Check:       streakAtLeast(10),
		Progress:    streakProgress(10),
	},
	{
		ID:          constants.AchievementUnbreakableFocus,
		Name:        "Unbreakable Focus",
		Description: "Keep a 15-day streak",
		Level:       constants.LevelSilver,
		Check:       streakAtLeast(15),
		Progress:    streakProgress(15),
	},
	{
		ID:          constants.AchievementUnstoppable,
		Name:        "Unstoppable",
		Description: "Keep a 21-day streak",
		Level:       constants.LevelGold,
		Check:       streakAtLeast(21),
		Progress:    streakProgress(21),
	},
	{
		ID:          constants.AchievementNewIdentity,
		Name:        "New Identity",
		Description: "Keep a 30-day streak",
		Level:       constants.LevelGold,
		Check:       streakAtLeast(30),
		Progress:    streakProgress(30),
	},
	{
		ID:          constants.AchievementLegend,
		Name:        "Legend",
		Description: "Keep a 100-day streak",
		Level:       constants.LevelGold,
		Check:       streakAtLeast(100),
		Progress:    streakProgress(100),
	},
}

// Catalog returns every achievement in display order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// LookupAchievement finds a catalog entry by id.
func LookupAchievement(id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
