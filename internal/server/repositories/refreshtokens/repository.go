// Package refreshtokens declares the repository contract for the stateful
// refresh-token store.
package refreshtokens

import (
	"context"
	"time"
)

// Repository defines operations for issuing, consuming, and revoking refresh
// tokens. Consume is the single place where one-time-use is enforced: the
// conditional revocation happens in one statement, so two concurrent callers
// presenting the same token value can never both succeed.
type Repository interface {
	// Create stores a new refresh token for userID expiring at expiresAt.
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// Consume atomically marks the token revoked if (and only if) it is
	// currently unrevoked and unexpired, returning the owning user id.
	// A missing, revoked, or expired token yields common.ErrNotFound.
	// Expired rows are left untouched; expiry is evaluated against now.
	Consume(ctx context.Context, token string, now time.Time) (int64, error)

	// Revoke marks the token revoked regardless of its current state.
	// It reports whether any row matched; revoking an already-revoked or
	// nonexistent token is not an error.
	Revoke(ctx context.Context, token string) (bool, error)
}
