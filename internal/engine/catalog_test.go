package engine

import (
	"testing"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range Catalog() {
		if seen[a.ID] {
			t.Errorf("duplicate achievement id %s", a.ID)
		}
		seen[a.ID] = true
		if a.Name == "" || a.Description == "" || a.Level == "" || a.Check == nil {
			t.Errorf("achievement %s is incomplete: %+v", a.ID, a)
		}
	}
	if len(seen) != 10 {
		t.Errorf("expected 10 achievements, got %d", len(seen))
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	c := Catalog()
	c[0].ID = "mutated"
	if Catalog()[0].ID == "mutated" {
		t.Error("Catalog() must not expose the package slice")
	}
}

func TestAchievementEvaluate(t *testing.T) {
	tests := []struct {
		id           string
		stats        models.Stats
		wantReached  bool
		wantProgress int
	}{
		{constants.AchievementFirstHabit, models.Stats{HabitsCount: 0}, false, 0},
		{constants.AchievementFirstHabit, models.Stats{HabitsCount: 1}, true, 100},
		{constants.AchievementFirstCheck, models.Stats{TotalHabitsCompleted: 1}, true, 100},
		{constants.AchievementModeOn, models.Stats{Streak: 1}, false, 0},
		{constants.AchievementModeOn, models.Stats{Streak: 2}, true, 100},
		{constants.AchievementNoPause, models.Stats{Streak: 4}, false, 0},
		{constants.AchievementNoPause, models.Stats{Streak: 5}, true, 100},
		{constants.AchievementDiscipline, models.Stats{TotalHabitsCompleted: 4}, false, 40},
		{constants.AchievementDiscipline, models.Stats{TotalHabitsCompleted: 25}, true, 100},
		{constants.AchievementRightRhythm, models.Stats{Streak: 5}, false, 50},
		{constants.AchievementUnbreakableFocus, models.Stats{Streak: 5}, false, 33},
		{constants.AchievementUnbreakableFocus, models.Stats{Streak: 10}, false, 67},
		{constants.AchievementUnstoppable, models.Stats{Streak: 21}, true, 100},
		{constants.AchievementNewIdentity, models.Stats{Streak: 0}, false, 0},
		{constants.AchievementLegend, models.Stats{Streak: 150}, true, 100},
	}

	for _, tt := range tests {
		a, ok := LookupAchievement(tt.id)
		if !ok {
			t.Fatalf("achievement %s missing from catalog", tt.id)
		}
		reached, progress := a.Evaluate(tt.stats)
		if reached != tt.wantReached || progress != tt.wantProgress {
			t.Errorf("%s with %+v = (%v, %d), want (%v, %d)",
				tt.id, tt.stats, reached, progress, tt.wantReached, tt.wantProgress)
		}
	}
}

func TestLookupAchievementUnknown(t *testing.T) {
	if _, ok := LookupAchievement("does-not-exist"); ok {
		t.Error("expected unknown id to be missing")
	}
}
