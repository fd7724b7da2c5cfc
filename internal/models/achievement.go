package models

import "time"

// AchievementProgress is one row per (user, achievement) pair, created on first recorded progress
// and never deleted.
type AchievementProgress struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	AchievementID string     `json:"achievement_id"`
	Progress      int        `json:"progress"`              // 0-100
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"` // first time progress reached 100
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Unlocked reports whether the row currently reads as unlocked.
func (a AchievementProgress) Unlocked() bool {
	return a.Progress >= 100
}

// EverUnlocked reports whether the achievement was unlocked at some point, even if the
// underlying stat has since regressed.
func (a AchievementProgress) EverUnlocked() bool {
	return a.UnlockedAt != nil
}
