// Package models defines the rows the server persists.
package models

import "time"

// User is an account. Email is stored trimmed and lower-cased; Name may be
// empty.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credential holds the bcrypt hash for exactly one user.
type Credential struct {
	UserID    string
	Hash      string
	CreatedAt time.Time
}
