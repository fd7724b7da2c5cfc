package sqlstore

import (
	"context"
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

type completionRow struct {
	ID        string `db:"id"`
	ItemID    string `db:"item_id"`
	UserID    string `db:"user_id"`
	Day       string `db:"day"`
	Value     int    `db:"value"`
	CreatedAt string `db:"created_at"`
}

func (s *Store) AddCompletion(ctx context.Context, c models.Completion) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, db.Rebind(`
		INSERT INTO habit_completions (id, item_id, user_id, day, value, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		c.ID, c.ItemID, c.UserID, c.Day, c.Value, s.timestamp())
	if err != nil {
		return fmt.Errorf("failed to record completion for item %s: %w", c.ItemID, err)
	}
	return nil
}

// ListCompletions returns history rows for itemID between startDay and endDay inclusive.
// Empty bounds are open.
func (s *Store) ListCompletions(ctx context.Context, userID, itemID, startDay, endDay string) ([]models.Completion, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `SELECT id, item_id, user_id, day, value, created_at FROM habit_completions
		WHERE user_id = ? AND item_id = ?`
	args := []interface{}{userID, itemID}
	if startDay != "" {
		query += ` AND day >= ?`
		args = append(args, startDay)
	}
	if endDay != "" {
		query += ` AND day <= ?`
		args = append(args, endDay)
	}
	query += ` ORDER BY day, created_at`

	var rows []completionRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list completions for item %s: %w", itemID, err)
	}
	out := make([]models.Completion, 0, len(rows))
	for _, r := range rows {
		createdAt, err := parseTimestamp("created_at", r.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Completion{
			ID:        r.ID,
			ItemID:    r.ItemID,
			UserID:    r.UserID,
			Day:       r.Day,
			Value:     r.Value,
			CreatedAt: createdAt,
		})
	}
	return out, nil
}
