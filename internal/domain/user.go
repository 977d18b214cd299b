package domain

import "time"

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	CreatedAt    time.Time
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID   int64
	Username string
}

func (p Principal) Authenticated() bool {
	return p.UserID > 0
}
