package services

import (
	"fmt"
	"regexp"

	"authkeeper/internal/common"
)

var (
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegexp    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	hasUpperRegexp = regexp.MustCompile(`[A-Z]`)
	hasLowerRegexp = regexp.MustCompile(`[a-z]`)
	hasDigitRegexp = regexp.MustCompile(`\d`)
)

// validateUsername enforces the username shape: 3-20 characters, letters,
// digits, and underscore only.
func validateUsername(username string) error {
	if !usernameRegexp.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-20 characters, alphanumeric and underscore only", common.ErrValidation)
	}
	return nil
}

// validateEmail applies a light syntactic check; the uniqueness constraint is
// enforced separately against the store.
func validateEmail(email string) error {
	if !emailRegexp.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	return nil
}

// validatePassword enforces the complexity policy: at least 8 characters with
// an uppercase letter, a lowercase letter, and a digit.
func validatePassword(password string) error {
	switch {
	case len(password) < 8:
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrValidation)
	case !hasUpperRegexp.MatchString(password):
		return fmt.Errorf("%w: password must contain at least one uppercase letter", common.ErrValidation)
	case !hasLowerRegexp.MatchString(password):
		return fmt.Errorf("%w: password must contain at least one lowercase letter", common.ErrValidation)
	case !hasDigitRegexp.MatchString(password):
		return fmt.Errorf("%w: password must contain at least one digit", common.ErrValidation)
	}
	return nil
}
