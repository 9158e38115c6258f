package models

import "github.com/google/uuid"

// UserCredentials is the subset of a user record needed to verify a password.
type UserCredentials struct {
	UserID       uuid.UUID `db:"user_id"`
	PasswordHash string    `db:"password_hash"`
}
