// Package models holds the server-side domain records persisted by the
// repositories.
package models

import (
	"database/sql"
	"time"
)

// User is an identity record. HashedPassword is a bcrypt hash; the plaintext
// is never stored. Email and username are globally unique with exact-match
// (case-sensitive) lookup semantics.
type User struct {
	ID             int64
	Email          string
	Username       string
	FullName       sql.NullString
	HashedPassword string
	IsActive       bool
	IsAdmin        bool
	CreatedAt      time.Time
	UpdatedAt      sql.NullTime
}
