// Package models defines server-side records persisted in PostgreSQL that
// have no place in the shared anchor domain.
package models

import "time"

// User is an account. Verifier is derived from the password and Salt; the
// password itself never reaches storage.
type User struct {
	ID             string
	UserName       string
	Salt           []byte
	Verifier       []byte
	CurrentVersion int64
	CreatedAt      time.Time
}
