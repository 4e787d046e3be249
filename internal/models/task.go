package models

import "time"

// Task is a single entry in a user's list. Tasks are never edited in place.
type Task struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
