package domain

import "time"

// Session describes an issued access token.
type Session struct {
	ID        string
	UserID    string
	Username  string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
