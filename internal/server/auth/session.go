package auth

import (
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// SessionSubject is the subject written into every session token.
const SessionSubject = "admin"

// HashPassword returns the bcrypt hash stored in configuration.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Authenticator checks the shared password and issues session tokens.
// With an empty password hash, authentication is disabled.
type Authenticator struct {
	passwordHash []byte
	secretKey    []byte
	validity     time.Duration
}

func NewAuthenticator(passwordHash, secretKey string, validity time.Duration) *Authenticator {
	return &Authenticator{
		passwordHash: []byte(passwordHash),
		secretKey:    []byte(secretKey),
		validity:     validity,
	}
}

// Enabled reports whether a password is required.
func (a *Authenticator) Enabled() bool {
	return len(a.passwordHash) > 0
}

// Validity is the lifetime of issued sessions.
func (a *Authenticator) Validity() time.Duration {
	return a.validity
}

// Login checks password and returns a signed session token.
func (a *Authenticator) Login(password string) (string, error) {
	if !a.Enabled() {
		return GenerateToken(SessionSubject, a.secretKey, a.validity)
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}
	return GenerateToken(SessionSubject, a.secretKey, a.validity)
}

// Verify accepts a session token issued by Login. It always succeeds when
// authentication is disabled.
func (a *Authenticator) Verify(token string) error {
	if !a.Enabled() {
		return nil
	}
	if token == "" {
		return common.ErrorUnauthorized
	}
	_, err := ParseToken(token, a.secretKey)
	return err
}
