package engine

import (
	"context"
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/logger"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
)

// ScanResult lists what a detector pass looked at and what it flipped.
type ScanResult struct {
	Checked int
	Broken  []models.Item
}

// Detector flips started habits that missed a full day into the terminal broken state.
type Detector struct {
	store storage.Provider
}

func NewDetector(store storage.Provider) *Detector {
	return &Detector{store: store}
}

// Scan checks every started, unbroken habit of userID. A habit whose last completion is
// older than yesterday is marked broken. Habits with no completions yet are exempt.
// The first persistence error abandons the pass; flips already made stay, and a later
// pass converges on the same result.
func (d *Detector) Scan(ctx context.Context, userID, today string) (ScanResult, error) {
	var result ScanResult

	yesterday, err := utils.Yesterday(today)
	if err != nil {
		return result, err
	}

	filter := storage.ActiveHabits()
	filter.MinCurrentValue = 1
	candidates, err := d.store.ListItems(ctx, userID, filter)
	if err != nil {
		return result, fmt.Errorf("failed to load habits: %w", err)
	}

	for _, habit := range candidates {
		result.Checked++
		if habit.LastCompletedDate == nil || *habit.LastCompletedDate >= yesterday {
			continue
		}

		flipped, err := d.store.MarkBroken(ctx, userID, habit.ID, yesterday)
		if err != nil {
			return result, fmt.Errorf("failed to mark habit %s broken: %w", habit.ID, err)
		}
		if !flipped {
			// Completed or deleted since the list was read
			continue
		}

		habit.Broken = true
		result.Broken = append(result.Broken, habit)
		logger.Info("Habit broken", "user", userID, "habit", habit.ID, "last_completed", *habit.LastCompletedDate)
	}

	return result, nil
}
