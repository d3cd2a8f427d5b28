// Package apperr carries the error taxonomy every handler funnels into the
// central response translator: validation (400), authentication (401),
// authorization (403) and not-found (404), plus classification helpers for
// sqlite faults.
package apperr

import (
	"database/sql/driver"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authentication(message string) error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func Authorization(message string) error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// As unwraps err to an *Error if one is anywhere in its chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsUniqueConstraint reports whether err is a sqlite unique constraint
// failure.
func IsUniqueConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// IsForeignKey reports whether err is a sqlite foreign key violation.
func IsForeignKey(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// IsConnection reports whether err means the storage engine is unreachable.
func IsConnection(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrCantOpen || sqliteErr.Code == sqlite3.ErrBusy
	}
	return false
}
