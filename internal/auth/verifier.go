package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks a pair of credentials.
type Verifier interface {
	Verify(ctx context.Context, email, password string) (bool, error)
}

var _ Verifier = (*StaticVerifier)(nil)

// StaticVerifier accepts a fixed set of users. Passwords are kept as bcrypt hashes.
type StaticVerifier struct {
	users map[string][]byte
}

// NewStaticVerifier builds a verifier from email:password pairs.
func NewStaticVerifier(users []string) (*StaticVerifier, error) {
	v := &StaticVerifier{users: map[string][]byte{}}

	for _, pair := range users {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		email, password, found := strings.Cut(pair, ":")
		email = normalizeEmail(email)
		if !found || email == "" || password == "" {
			return nil, fmt.Errorf("invalid user entry %q: expected email:password", pair)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", email, err)
		}
		v.users[email] = hash
	}

	if len(v.users) == 0 {
		return nil, errors.New("no static users configured")
	}

	return v, nil
}

func (v *StaticVerifier) Verify(_ context.Context, email, password string) (bool, error) {
	hash, ok := v.users[normalizeEmail(email)]
	if !ok {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password hash: %w", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
