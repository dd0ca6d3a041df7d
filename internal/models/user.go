package models

import "time"

// User represents a registered credential record. The Password field
// holds only the bcrypt hash of the original password.
type User struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Phone     string
	Password  string
	CreatedAt time.Time
}

// Sanitize returns a copy of the user with the password hash removed.
func (u User) Sanitize() User {
	u.Password = ""
	return u
}
