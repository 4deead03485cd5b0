package domain

import (
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9]{4,32}$`)

// User represents a registered account. The handle is immutable after
// registration; the password hash and last login are not.
type User struct {
	ID        int64      `json:"id"`
	Handle    string     `json:"user"`
	PassHash  string     `json:"-"`
	Joined    time.Time  `json:"joined"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// ValidateHandle reports whether a handle is acceptable for registration.
func ValidateHandle(handle string) error {
	if !handlePattern.MatchString(handle) {
		return NewError(ErrCodeInvalid, "user id must be 4-32 alphanumeric characters")
	}
	return nil
}

// SetPassword replaces the stored hash with a bcrypt hash of the new password.
func (u *User) SetPassword(password string) error {
	if len(password) == 0 {
		return NewError(ErrCodeInvalid, "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return WrapError(ErrCodeInternal, "hash password", err)
	}
	u.PassHash = string(hash)
	return nil
}

// PasswordOK checks a candidate password against the stored hash.
func (u *User) PasswordOK(password string) bool {
	if u == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PassHash), []byte(password)) == nil
}
