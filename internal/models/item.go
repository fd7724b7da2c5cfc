package models

import "time"

// Frequency describes how often a habit is expected to be completed.
// Only daily habits exist today; the column is kept so weekly cadences can be added later.
type Frequency string

const (
	FrequencyDaily Frequency = "daily"
	FrequencyOnce  Frequency = "once"
)

// Item is a single row of the habits table. One table holds both kinds:
// recurring streak habits (IsTask == false) and one-off quantity tasks (IsTask == true).
type Item struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	Icon              string    `json:"icon"`
	Color             Color     `json:"color"`
	IsTask            bool      `json:"is_task"`
	Frequency         Frequency `json:"frequency"`
	GoalValue         int       `json:"goal_value"`
	CurrentValue      int       `json:"current_value"`
	IsComplete        bool      `json:"is_complete"`
	LastCompletedDate *string   `json:"last_completed_date,omitempty"` // YYYY-MM-DD format
	Broken            bool      `json:"broken"`
	Unit              Unit      `json:"unit"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsHabit reports whether the item is a recurring streak habit.
func (i Item) IsHabit() bool {
	return !i.IsTask
}

// CompletedOn reports whether the habit's last completion happened on day.
func (i Item) CompletedOn(day string) bool {
	return i.LastCompletedDate != nil && *i.LastCompletedDate == day
}

// Active reports whether the habit still counts towards the daily streak.
func (i Item) Active() bool {
	return i.IsHabit() && !i.Broken
}

// Kind returns a human-readable label for the item type
func (i Item) Kind() string {
	if i.IsTask {
		return "task"
	}
	return "habit"
}
