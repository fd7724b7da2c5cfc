package engine

import (
	"context"
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/logger"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
)

// StreakReason explains why a completion did or did not move the streak.
type StreakReason string

const (
	StreakContinued      StreakReason = "continued"
	StreakRestarted      StreakReason = "restarted"
	StreakAlreadyCounted StreakReason = "already_counted"
	StreakIncomplete     StreakReason = "incomplete"
	StreakLostRace       StreakReason = "lost_race"
)

// StreakOutcome is the result of one streak update attempt.
type StreakOutcome struct {
	Reason   StreakReason
	Previous int
	Streak   int
	Stats    models.Stats
	Changes  []AchievementChange
}

// Advanced reports whether this attempt moved the streak.
func (o StreakOutcome) Advanced() bool {
	return o.Reason == StreakContinued || o.Reason == StreakRestarted
}

// Streaks advances a user's daily streak once every active habit is done for the day.
type Streaks struct {
	store     storage.Provider
	evaluator *Evaluator
}

// NewStreaks creates a streak updater. A nil evaluator skips achievement evaluation.
func NewStreaks(store storage.Provider, evaluator *Evaluator) *Streaks {
	return &Streaks{store: store, evaluator: evaluator}
}

// OnHabitCompleted runs after a habit completion has been persisted.
//
// The streak moves at most once per day, and only when every unbroken habit of the user
// was completed on today. It continues from yesterday or restarts at 1. The write is a
// compare-and-swap on last_completion_date, so concurrent sessions advance it once.
func (s *Streaks) OnHabitCompleted(ctx context.Context, userID, today string) (StreakOutcome, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return StreakOutcome{}, err
	}

	out := StreakOutcome{Previous: profile.Streak, Streak: profile.Streak}
	if profile.LastCompletionDate != nil && *profile.LastCompletionDate == today {
		out.Reason = StreakAlreadyCounted
		return out, nil
	}

	habits, err := s.store.ListItems(ctx, userID, storage.ActiveHabits())
	if err != nil {
		return out, fmt.Errorf("failed to load habits: %w", err)
	}
	if !allCompletedOn(habits, today) {
		out.Reason = StreakIncomplete
		return out, nil
	}

	yesterday, err := utils.Yesterday(today)
	if err != nil {
		return out, err
	}
	newStreak := 1
	out.Reason = StreakRestarted
	if profile.LastCompletionDate != nil && *profile.LastCompletionDate == yesterday {
		newStreak = profile.Streak + 1
		out.Reason = StreakContinued
	}

	advanced, err := s.store.AdvanceStreak(ctx, userID, profile.LastCompletionDate, today, newStreak)
	if err != nil {
		return out, err
	}
	if !advanced {
		logger.Debug("Streak already advanced by another session", "user", userID, "day", today)
		out.Reason = StreakLostRace
		return out, nil
	}
	out.Streak = newStreak
	logger.Info("Streak advanced", "user", userID, "from", profile.Streak, "to", newStreak, "reason", out.Reason)

	count, err := s.store.CountHabits(ctx, userID)
	if err != nil {
		return out, fmt.Errorf("failed to count habits: %w", err)
	}
	out.Stats = models.Stats{
		Streak:               newStreak,
		TotalHabitsCompleted: profile.TotalHabitsCompleted + 1,
		HabitsCount:          count,
	}

	if s.evaluator != nil {
		out.Changes, err = s.evaluator.Evaluate(ctx, userID, out.Stats)
		if err != nil {
			return out, fmt.Errorf("failed to evaluate achievements: %w", err)
		}
	}
	return out, nil
}

// CheckIntegrity zeroes a streak that can no longer continue because its last day is
// older than yesterday. The completion date is kept so history stays intact.
func (s *Streaks) CheckIntegrity(ctx context.Context, userID, today string) (bool, error) {
	yesterday, err := utils.Yesterday(today)
	if err != nil {
		return false, err
	}
	reset, err := s.store.ResetStreak(ctx, userID, yesterday)
	if err != nil {
		return false, err
	}
	if reset {
		logger.Info("Streak reset after a missed day", "user", userID, "today", today)
	}
	return reset, nil
}

// allCompletedOn reports whether there is at least one habit and all were completed on day.
func allCompletedOn(habits []models.Item, day string) bool {
	if len(habits) == 0 {
		return false
	}
	for _, h := range habits {
		if !h.CompletedOn(day) {
			return false
		}
	}
	return true
}
