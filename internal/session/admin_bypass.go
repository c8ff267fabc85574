package session

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultAdminPassword is the password the shop has always shipped the admin login with.
// Deployments should set ADMIN_PASSWORD_HASH instead of relying on it.
const DefaultAdminPassword = "admin123"

// AdminBypass is the reserved built in administrator login. When email and password
// match, an admin session is created locally and the remote login is never called.
// This is a deliberate back door; it is reviewed here and can be switched off with
// ADMIN_BYPASS_ENABLED=false.
type AdminBypass struct {
	email        string
	passwordHash []byte
}

func NewAdminBypass(email, passwordHash string) (*AdminBypass, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("admin bypass needs an email")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("admin bypass password hash: %w", err)
	}
	return &AdminBypass{email: email, passwordHash: []byte(passwordHash)}, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Matches compares the email exactly (after trimming) and the password against the hash.
func (b *AdminBypass) Matches(email, password string) bool {
	if b == nil || strings.TrimSpace(email) != b.email {
		return false
	}
	return bcrypt.CompareHashAndPassword(b.passwordHash, []byte(password)) == nil
}

func (b *AdminBypass) Email() string {
	return b.email
}
