package models

import "time"

// Profile is the per-user aggregate the streak updater reads and writes.
type Profile struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	Name                 string    `json:"name"`
	Streak               int       `json:"streak"`
	LongestStreak        int       `json:"longest_streak"`
	LastCompletionDate   *string   `json:"last_completion_date,omitempty"` // YYYY-MM-DD format
	TotalHabitsCompleted int       `json:"total_habits_completed"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Stats is the aggregate snapshot achievements are evaluated against.
type Stats struct {
	Streak               int `json:"streak"`
	TotalHabitsCompleted int `json:"total_habits_completed"`
	HabitsCount          int `json:"habits_count"`
}
