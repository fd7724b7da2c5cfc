package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/ymhp64t9bz-png/habitus-strict-html/internal/errors"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
)

type itemRow struct {
	ID                string         `db:"id"`
	UserID            string         `db:"user_id"`
	Title             string         `db:"title"`
	Icon              string         `db:"icon"`
	Color             string         `db:"color"`
	IsTask            bool           `db:"is_task"`
	Frequency         string         `db:"frequency"`
	GoalValue         int            `db:"goal_value"`
	CurrentValue      int            `db:"current_value"`
	IsComplete        bool           `db:"is_complete"`
	LastCompletedDate sql.NullString `db:"last_completed_date"`
	Broken            bool           `db:"broken"`
	Unit              string         `db:"unit"`
	CreatedAt         string         `db:"created_at"`
	UpdatedAt         string         `db:"updated_at"`
}

const itemColumns = `id, user_id, title, icon, color, is_task, frequency, goal_value, current_value,
	is_complete, last_completed_date, broken, unit, created_at, updated_at`

func (r itemRow) model() (models.Item, error) {
	item := models.Item{
		ID:                r.ID,
		UserID:            r.UserID,
		Title:             r.Title,
		Icon:              r.Icon,
		Color:             models.Color(r.Color),
		IsTask:            r.IsTask,
		Frequency:         models.Frequency(r.Frequency),
		GoalValue:         r.GoalValue,
		CurrentValue:      r.CurrentValue,
		IsComplete:        r.IsComplete,
		LastCompletedDate: dayPtr(r.LastCompletedDate),
		Broken:            r.Broken,
		Unit:              models.Unit(r.Unit),
	}
	var err error
	if item.CreatedAt, err = parseTimestamp("created_at", r.CreatedAt); err != nil {
		return models.Item{}, err
	}
	if item.UpdatedAt, err = parseTimestamp("updated_at", r.UpdatedAt); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

func (s *Store) AddItem(ctx context.Context, item models.Item) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	now := s.timestamp()
	_, err = db.ExecContext(ctx, db.Rebind(`
		INSERT INTO habits (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		item.ID, item.UserID, item.Title, item.Icon, string(item.Color), item.IsTask,
		string(item.Frequency), item.GoalValue, item.CurrentValue, item.IsComplete,
		nullableDay(item.LastCompletedDate), item.Broken, string(item.Unit), now, now)
	if err != nil {
		return fmt.Errorf("failed to add %s %s: %w", item.Kind(), item.ID, err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, userID, id string) (models.Item, error) {
	db, err := s.conn()
	if err != nil {
		return models.Item{}, err
	}
	var row itemRow
	err = db.GetContext(ctx, &row, db.Rebind(`SELECT `+itemColumns+` FROM habits WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return models.Item{}, notFound(err, "item", id)
	}
	return row.model()
}

func (s *Store) ListItems(ctx context.Context, userID string, filter storage.ItemFilter) ([]models.Item, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	where := []string{"user_id = ?"}
	args := []interface{}{userID}
	if filter.IsTask != nil {
		where = append(where, "is_task = ?")
		args = append(args, *filter.IsTask)
	}
	if filter.Broken != nil {
		where = append(where, "broken = ?")
		args = append(args, *filter.Broken)
	}
	if filter.MinCurrentValue > 0 {
		where = append(where, "current_value >= ?")
		args = append(args, filter.MinCurrentValue)
	}
	query := `SELECT ` + itemColumns + ` FROM habits WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at, id`

	var rows []itemRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list items for user %s: %w", userID, err)
	}
	items := make([]models.Item, 0, len(rows))
	for _, r := range rows {
		item, err := r.model()
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", r.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateItem rewrites the display fields and goal of an item. Progress columns are only
// changed through the conditional updates below.
func (s *Store) UpdateItem(ctx context.Context, item models.Item) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE habits
		SET title = ?, icon = ?, color = ?, unit = ?, goal_value = ?,
			is_complete = (current_value >= ?), updated_at = ?
		WHERE id = ? AND user_id = ?`),
		item.Title, item.Icon, string(item.Color), string(item.Unit), item.GoalValue,
		item.GoalValue, s.timestamp(), item.ID, item.UserID)
	if err != nil {
		return fmt.Errorf("failed to update item %s: %w", item.ID, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("item %s: %w", item.ID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteItem hard-deletes an item together with its completion history.
func (s *Store) DeleteItem(ctx context.Context, userID, id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete of item %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habit_completions WHERE item_id = ? AND user_id = ?`), id, userID); err != nil {
		return fmt.Errorf("failed to delete history of item %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habits WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("item %s: %w", id, apperrors.ErrNotFound)
	}
	return tx.Commit()
}

func (s *Store) CountHabits(ctx context.Context, userID string) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.GetContext(ctx, &n, db.Rebind(`SELECT COUNT(*) FROM habits WHERE user_id = ? AND is_task = ?`), userID, false); err != nil {
		return 0, fmt.Errorf("failed to count habits for user %s: %w", userID, err)
	}
	return n, nil
}

func (s *Store) IncrementHabit(ctx context.Context, userID, id, today string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE habits
		SET current_value = current_value + 1,
			last_completed_date = ?,
			is_complete = (current_value + 1 >= goal_value),
			updated_at = ?
		WHERE id = ? AND user_id = ? AND is_task = ? AND broken = ?
			AND (last_completed_date IS NULL OR last_completed_date <> ?)`),
		today, s.timestamp(), id, userID, false, false, today)
	if err != nil {
		return false, fmt.Errorf("failed to increment habit %s: %w", id, err)
	}
	return affected(res)
}

func (s *Store) AddTaskProgress(ctx context.Context, userID, id string, amount int) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE habits
		SET current_value = current_value + ?,
			is_complete = (current_value + ? >= goal_value),
			updated_at = ?
		WHERE id = ? AND user_id = ? AND is_task = ?`),
		amount, amount, s.timestamp(), id, userID, true)
	if err != nil {
		return false, fmt.Errorf("failed to add progress to task %s: %w", id, err)
	}
	return affected(res)
}

func (s *Store) MarkBroken(ctx context.Context, userID, id, before string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE habits SET broken = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND is_task = ? AND broken = ?
			AND current_value > 0
			AND last_completed_date IS NOT NULL AND last_completed_date < ?`),
		true, s.timestamp(), id, userID, false, false, before)
	if err != nil {
		return false, fmt.Errorf("failed to mark habit %s broken: %w", id, err)
	}
	return affected(res)
}
