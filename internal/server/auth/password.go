package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher abstracts password hashing so services can be tested with a
// cheap stub instead of a real bcrypt round.
type PasswordHasher interface {
	// Hash produces a self-describing hash with a fresh random salt.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. Malformed hashes fail
	// closed (false), never open.
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher over bcrypt. The cost factor makes
// offline brute force expensive; the comparison is constant-time inside the
// library.
type BcryptHasher struct{}

func (BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
