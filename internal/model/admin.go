package model

import (
	"time"
	"unicode/utf8"

	"github.com/erazemk/torba/internal/errs"
)

// Admin is an account allowed to manage sites, bags and checklists.
type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// MinPasswordLength is the shortest password, in characters, accepted at
// login and when bootstrapping an admin.
const MinPasswordLength = 8

// ValidatePassword checks the password policy.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errs.Invalid("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
