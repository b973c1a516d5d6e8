package models

import "time"

// User represents a user record in the store.
// The username is the unique identifier and is immutable after creation.
type User struct {
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"` // Never exposed
	Disabled     bool      `db:"disabled" json:"disabled"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
