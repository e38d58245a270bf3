package models

import "time"

// RefreshToken is a grant record for one opaque refresh token. A token is
// usable only while IsRevoked is false and ExpiresAt is in the future.
// IsRevoked moves false -> true exactly once; rows are kept afterwards as a
// replay-detection trail.
type RefreshToken struct {
	ID        int64
	Token     string
	UserID    int64
	ExpiresAt time.Time
	IsRevoked bool
	CreatedAt time.Time
}
