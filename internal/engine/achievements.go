package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/logger"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
)

// ChangeKind says how an evaluator pass moved an achievement row.
type ChangeKind string

const (
	ChangeUnlocked  ChangeKind = "unlocked"
	ChangeProgress  ChangeKind = "progress"
	ChangeRegressed ChangeKind = "regressed"
	// ChangeRestored is a previously unlocked row climbing back to 100.
	ChangeRestored ChangeKind = "restored"
)

// AchievementChange is one row written by an evaluator pass.
type AchievementChange struct {
	Achievement Achievement
	Kind        ChangeKind
	From        int
	To          int
}

// Evaluator keeps the achievement rows of a user consistent with their stats.
type Evaluator struct {
	store          storage.Provider
	freezeUnlocked bool
	now            func() time.Time
	newID          func() string
}

// NewEvaluator creates an evaluator. With freezeUnlocked set, rows that were ever unlocked
// keep their progress when the underlying stat later regresses.
func NewEvaluator(store storage.Provider, freezeUnlocked bool) *Evaluator {
	return &Evaluator{
		store:          store,
		freezeUnlocked: freezeUnlocked,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// Evaluate walks the catalog against stats and writes only the rows that change:
//   - predicate true and the row missing or below 100: set to 100 (unlock, or restore when
//     the row was unlocked before)
//   - predicate false and a row exists: store the recomputed progress, never delete
//   - predicate false, no row, progress above 0: create a partial row
//
// The first persistence error aborts the pass.
func (e *Evaluator) Evaluate(ctx context.Context, userID string, stats models.Stats) ([]AchievementChange, error) {
	rows, err := e.store.ListAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	existing := make(map[string]models.AchievementProgress, len(rows))
	for _, r := range rows {
		existing[r.AchievementID] = r
	}

	var changes []AchievementChange
	for _, a := range catalog {
		reached, progress := a.Evaluate(stats)
		row, exists := existing[a.ID]

		switch {
		case reached:
			if exists && row.Unlocked() {
				continue
			}
			now := e.now()
			if err := e.store.UpsertAchievement(ctx, models.AchievementProgress{
				ID:            e.rowID(row, exists),
				UserID:        userID,
				AchievementID: a.ID,
				Progress:      constants.ProgressUnlocked,
				UnlockedAt:    &now,
			}); err != nil {
				return changes, err
			}
			if exists && row.EverUnlocked() {
				changes = append(changes, AchievementChange{Achievement: a, Kind: ChangeRestored, From: row.Progress, To: constants.ProgressUnlocked})
				logger.Debug("Achievement restored", "user", userID, "achievement", a.ID, "from", row.Progress)
				continue
			}
			changes = append(changes, AchievementChange{Achievement: a, Kind: ChangeUnlocked, From: row.Progress, To: constants.ProgressUnlocked})
			logger.Info("Achievement unlocked", "user", userID, "achievement", a.ID)

		case exists:
			if row.Progress == progress || (e.freezeUnlocked && row.EverUnlocked()) {
				continue
			}
			if err := e.store.UpdateAchievementProgress(ctx, userID, a.ID, progress); err != nil {
				return changes, err
			}
			kind := ChangeProgress
			if progress < row.Progress {
				kind = ChangeRegressed
			}
			changes = append(changes, AchievementChange{Achievement: a, Kind: kind, From: row.Progress, To: progress})
			logger.Debug("Achievement progress", "user", userID, "achievement", a.ID, "from", row.Progress, "to", progress)

		case progress > 0:
			if err := e.store.UpsertAchievement(ctx, models.AchievementProgress{
				ID:            e.newID(),
				UserID:        userID,
				AchievementID: a.ID,
				Progress:      progress,
			}); err != nil {
				return changes, err
			}
			changes = append(changes, AchievementChange{Achievement: a, Kind: ChangeProgress, From: 0, To: progress})
			logger.Debug("Achievement progress", "user", userID, "achievement", a.ID, "from", 0, "to", progress)
		}
	}

	return changes, nil
}

func (e *Evaluator) rowID(row models.AchievementProgress, exists bool) string {
	if exists && row.ID != "" {
		return row.ID
	}
	return e.newID()
}

// Unlocked filters changes down to fresh unlocks.
func Unlocked(changes []AchievementChange) []Achievement {
	var out []Achievement
	for _, c := range changes {
		if c.Kind == ChangeUnlocked {
			out = append(out, c.Achievement)
		}
	}
	return out
}
