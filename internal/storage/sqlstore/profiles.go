package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

type profileRow struct {
	ID                   string         `db:"id"`
	UserID               string         `db:"user_id"`
	Name                 string         `db:"name"`
	Streak               int            `db:"streak"`
	LongestStreak        int            `db:"longest_streak"`
	LastCompletionDate   sql.NullString `db:"last_completion_date"`
	TotalHabitsCompleted int            `db:"total_habits_completed"`
	CreatedAt            string         `db:"created_at"`
	UpdatedAt            string         `db:"updated_at"`
}

const profileColumns = `id, user_id, name, streak, longest_streak, last_completion_date,
	total_habits_completed, created_at, updated_at`

func (r profileRow) model() (models.Profile, error) {
	p := models.Profile{
		ID:                   r.ID,
		UserID:               r.UserID,
		Name:                 r.Name,
		Streak:               r.Streak,
		LongestStreak:        r.LongestStreak,
		LastCompletionDate:   dayPtr(r.LastCompletionDate),
		TotalHabitsCompleted: r.TotalHabitsCompleted,
	}
	var err error
	if p.CreatedAt, err = parseTimestamp("created_at", r.CreatedAt); err != nil {
		return models.Profile{}, err
	}
	if p.UpdatedAt, err = parseTimestamp("updated_at", r.UpdatedAt); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) CreateProfile(ctx context.Context, p models.Profile) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	now := s.timestamp()
	_, err = db.ExecContext(ctx, db.Rebind(`
		INSERT INTO profiles (id, user_id, name, streak, longest_streak, last_completion_date,
			total_habits_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.UserID, p.Name, p.Streak, p.LongestStreak, nullableDay(p.LastCompletionDate),
		p.TotalHabitsCompleted, now, now)
	if err != nil {
		return fmt.Errorf("failed to create profile for user %s: %w", p.UserID, err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	db, err := s.conn()
	if err != nil {
		return models.Profile{}, err
	}
	var row profileRow
	err = db.GetContext(ctx, &row, db.Rebind(`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`), userID)
	if err != nil {
		return models.Profile{}, notFound(err, "profile", userID)
	}
	return row.model()
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []profileRow
	if err := db.SelectContext(ctx, &rows, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at, user_id`); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	profiles := make([]models.Profile, 0, len(rows))
	for _, r := range rows {
		p, err := r.model()
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", r.UserID, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *Store) AdvanceStreak(ctx context.Context, userID string, expectedLast *string, today string, newStreak int) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE profiles
		SET streak = ?,
			longest_streak = CASE WHEN longest_streak < ? THEN ? ELSE longest_streak END,
			total_habits_completed = total_habits_completed + 1,
			last_completion_date = ?,
			updated_at = ?
		WHERE user_id = ?`
	args := []interface{}{newStreak, newStreak, newStreak, today, s.timestamp(), userID}
	if expectedLast == nil {
		query += ` AND last_completion_date IS NULL`
	} else {
		query += ` AND last_completion_date = ?`
		args = append(args, *expectedLast)
	}

	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("failed to advance streak for user %s: %w", userID, err)
	}
	return affected(res)
}

func (s *Store) ResetStreak(ctx context.Context, userID string, before string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE profiles SET streak = 0, updated_at = ?
		WHERE user_id = ? AND streak > 0
			AND last_completion_date IS NOT NULL AND last_completion_date < ?`),
		s.timestamp(), userID, before)
	if err != nil {
		return false, fmt.Errorf("failed to reset streak for user %s: %w", userID, err)
	}
	return affected(res)
}
