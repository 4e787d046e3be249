package models

import "time"

// Session is the server-side record behind a session cookie.
type Session struct {
	ID         string    `json:"-"`
	UserID     int       `json:"user_id"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Expired reports whether the session outlived either timeout at now.
// A zero timeout disables that check.
func (s Session) Expired(now time.Time, idle, absolute time.Duration) bool {
	if absolute > 0 && now.Sub(s.CreatedAt) >= absolute {
		return true
	}
	if idle > 0 && now.Sub(s.LastSeenAt) >= idle {
		return true
	}
	return false
}
