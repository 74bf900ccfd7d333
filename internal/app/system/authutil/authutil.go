// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password length limits. bcrypt ignores input past 72 bytes, so the
// upper bound is mostly a guard against absurd form posts.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	ErrPasswordCommon   = errors.New("password is too common")
)

var commonPasswords = map[string]struct{}{
	"123456": {}, "1234567": {}, "12345678": {}, "123456789": {},
	"password": {}, "qwerty": {}, "abc123": {}, "iloveyou": {},
	"letmein": {}, "football": {}, "welcome": {}, "admin123": {},
	"retreat": {}, "mpesa123": {},
}

// ValidatePassword checks a new admin password against the length limits
// and a short list of common passwords.
func ValidatePassword(pw string) error {
	switch {
	case len(pw) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(pw) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	if _, ok := commonPasswords[strings.ToLower(pw)]; ok {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules describes ValidatePassword for display.
func PasswordRules() string {
	return fmt.Sprintf("At least %d characters; avoid common passwords.", MinPasswordLength)
}

// HashPassword returns a bcrypt hash suitable for the admin_password_hash setting.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash. Malformed hashes never match.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
