// Package models defines the storefront's domain records as stored and
// returned by the repositories.
package models

import "time"

// User is a registered customer. PasswordHash is a bcrypt digest and never
// leaves the server.
type User struct {
	ID           string
	Email        string
	FullName     string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// ProfilePatch carries the mutable profile fields. Nil fields are left as is.
type ProfilePatch struct {
	FullName *string
	Phone    *string
}

func (p ProfilePatch) IsEmpty() bool {
	return p.FullName == nil && p.Phone == nil
}
