package domain

import "time"

// User is an account that owns bookmarks and may hold one session at a time.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
