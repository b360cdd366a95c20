package models

import "time"

// RefreshToken is a persisted refresh-token record. A token is usable only
// while the record exists and Expires is in the future.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	Expires   time.Time `json:"expires"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired reports whether the record has expired at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !t.Expires.After(now)
}
