package models

import "time"

// Completion is an append-only history row written for every accepted progress event.
type Completion struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
