package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/ymhp64t9bz-png/habitus-strict-html/internal/errors"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

type achievementRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	AchievementID string         `db:"achievement_id"`
	Progress      int            `db:"progress"`
	UnlockedAt    sql.NullString `db:"unlocked_at"`
	UpdatedAt     string         `db:"updated_at"`
}

func (r achievementRow) model() (models.AchievementProgress, error) {
	a := models.AchievementProgress{
		ID:            r.ID,
		UserID:        r.UserID,
		AchievementID: r.AchievementID,
		Progress:      r.Progress,
	}
	var err error
	if a.UpdatedAt, err = parseTimestamp("updated_at", r.UpdatedAt); err != nil {
		return models.AchievementProgress{}, err
	}
	if r.UnlockedAt.Valid {
		t, err := parseTimestamp("unlocked_at", r.UnlockedAt.String)
		if err != nil {
			return models.AchievementProgress{}, err
		}
		a.UnlockedAt = &t
	}
	return a, nil
}

func (s *Store) ListAchievements(ctx context.Context, userID string) ([]models.AchievementProgress, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []achievementRow
	err = db.SelectContext(ctx, &rows, db.Rebind(`
		SELECT id, user_id, achievement_id, progress, unlocked_at, updated_at
		FROM user_achievements WHERE user_id = ? ORDER BY achievement_id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements for user %s: %w", userID, err)
	}
	out := make([]models.AchievementProgress, 0, len(rows))
	for _, r := range rows {
		a, err := r.model()
		if err != nil {
			return nil, fmt.Errorf("achievement %s: %w", r.AchievementID, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) UpsertAchievement(ctx context.Context, a models.AchievementProgress) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	var unlockedAt sql.NullString
	if a.UnlockedAt != nil {
		unlockedAt = sql.NullString{String: a.UnlockedAt.UTC().Format(time.RFC3339), Valid: true}
	}
	_, err = db.ExecContext(ctx, db.Rebind(`
		INSERT INTO user_achievements (id, user_id, achievement_id, progress, unlocked_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO UPDATE SET
			progress = excluded.progress,
			unlocked_at = COALESCE(user_achievements.unlocked_at, excluded.unlocked_at),
			updated_at = excluded.updated_at`),
		a.ID, a.UserID, a.AchievementID, a.Progress, unlockedAt, s.timestamp())
	if err != nil {
		return fmt.Errorf("failed to upsert achievement %s for user %s: %w", a.AchievementID, a.UserID, err)
	}
	return nil
}

func (s *Store) UpdateAchievementProgress(ctx context.Context, userID, achievementID string, progress int) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE user_achievements SET progress = ?, updated_at = ?
		WHERE user_id = ? AND achievement_id = ?`),
		progress, s.timestamp(), userID, achievementID)
	if err != nil {
		return fmt.Errorf("failed to update achievement %s for user %s: %w", achievementID, userID, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("achievement %s for user %s: %w", achievementID, userID, apperrors.ErrNotFound)
	}
	return nil
}
