// Package services contains server-side business logic. This file implements
// UserService, which handles registration, credential verification, access
// and refresh token issuance, refresh-token rotation, and the identity and
// authorization checks used by protected operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"authkeeper/internal/common"
	"authkeeper/internal/dbx"
	"authkeeper/internal/server/auth"
	"authkeeper/internal/server/config"
	"authkeeper/internal/server/models"
	"authkeeper/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token, a long-lived single-use
// refresh token, and the access token's lifetime in seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// RegisterInput carries the fields of a registration request. IsAdmin is
// never set by the public API; only the operator CLI provisions admins.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName *string
	IsAdmin  bool
}

// UserService provides the authentication and user-management operations:
//   - Register: validate input and create users
//   - Login: verify credentials and mint a token pair
//   - Refresh: consume a refresh token (one-time use) and mint a new pair
//   - Authenticate / RequireAdmin: resolve bearer identity and gate admin ops
//   - profile and admin user management
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	hasher      auth.PasswordHasher
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewUserService constructs a UserService from repositories, the token codec,
// the password hasher, and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, hasher auth.PasswordHasher, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		accessTTL:   cfg.AccessTokenTTL,
		refreshTTL:  cfg.RefreshTokenTTL,
	}
}

// Register validates the input shape, rejects taken emails and usernames with
// ErrConflict, and creates the user. The unique constraints in the store back
// the pre-checks, so a concurrent duplicate registration still surfaces as
// ErrConflict rather than an infrastructure error.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	taken, err := repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, common.ErrInternal
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", common.ErrConflict)
	}

	taken, err = repo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, common.ErrInternal
	}
	if taken {
		return nil, fmt.Errorf("%w: username already registered", common.ErrConflict)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		Email:          in.Email,
		Username:       in.Username,
		HashedPassword: hash,
		IsAdmin:        in.IsAdmin,
	}
	if in.FullName != nil {
		user.FullName = sql.NullString{String: *in.FullName, Valid: true}
	}

	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, common.ErrInternal
	}
	return created, nil
}

// Login looks the user up by exact username or email match and verifies the
// password. A missing user, a wrong password, and an inactive account all
// fail with the same ErrUnauthorized so callers get no account-enumeration
// oracle.
func (s *UserService) Login(ctx context.Context, login, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, common.ErrUnauthorized
	}

	return s.generateTokenPair(ctx, user, s.db)
}

// Refresh rotates a refresh token: the presented token is consumed (revoked
// atomically with its validation, so it can never be used again) and a brand
// new access+refresh pair is issued inside the same transaction. Any token
// that is unknown, already used, or expired yields ErrUnauthorized.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userID, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken, time.Now())
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrUnauthorized
			}
			return common.ErrInternal
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrUnauthorized
			}
			return common.ErrInternal
		}

		pair, err = s.generateTokenPair(ctx, user, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	return pair, nil
}

// Logout revokes the refresh token. Revocation is idempotent: a token that is
// unknown or already revoked is not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.repomanager.RefreshTokens(s.db).Revoke(ctx, refreshToken); err != nil {
		return common.ErrInternal
	}
	return nil
}

// Authenticate resolves a bearer access token to a live user record. Token
// failures, a missing user row, and an inactive account are deliberately
// indistinguishable: all return ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	userID, _, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	if !user.IsActive {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// RequireAdmin gates admin-only operations. Identity is already established
// at this point, so the failure is ErrForbidden, not ErrUnauthorized.
func (s *UserService) RequireAdmin(user *models.User) error {
	if !user.IsAdmin {
		return fmt.Errorf("%w: not enough permissions", common.ErrForbidden)
	}
	return nil
}

// UpdateProfile applies a partial update of email and full name to the given
// user. An email already owned by another user surfaces as ErrConflict.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, email, fullName *string) (*models.User, error) {
	if email != nil {
		if err := validateEmail(*email); err != nil {
			return nil, err
		}
	}

	user, err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, email, fullName)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return nil, fmt.Errorf("%w: user not found", common.ErrNotFound)
		case errors.Is(err, common.ErrConflict):
			return nil, fmt.Errorf("%w: email already registered", common.ErrConflict)
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// ListUsers returns a page of users. The caller is expected to have passed
// RequireAdmin already; this method only normalizes paging.
func (s *UserService) ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}

	list, err := s.repomanager.Users(s.db).List(ctx, skip, limit)
	if err != nil {
		return nil, common.ErrInternal
	}
	return list, nil
}

// DeleteUser hard-deletes the target user. Deleting the calling account is
// rejected with ErrConflict; a missing target is ErrNotFound.
func (s *UserService) DeleteUser(ctx context.Context, callerID, targetID int64) error {
	if callerID == targetID {
		return fmt.Errorf("%w: cannot delete your own account", common.ErrConflict)
	}

	deleted, err := s.repomanager.Users(s.db).Delete(ctx, targetID)
	if err != nil {
		return common.ErrInternal
	}
	if !deleted {
		return fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	return nil
}

// --- helpers below ---

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, db dbx.DBTX) (*TokenPair, error) {
	access, err := s.codec.Issue(user.ID, user.Username, s.accessTTL)
	if err != nil {
		return nil, common.ErrInternal
	}

	refresh, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, common.ErrInternal
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refresh, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, common.ErrInternal
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}
