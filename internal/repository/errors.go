// Package repository implements persistence on MySQL: the
// transactional Store the booking core runs against, plus read-side
// repositories for the HTTP layer.  This file holds the sentinel
// errors shared across repositories and the MySQL error-code checks.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// dependent state, such as deleting a course that still has sessions.
// Handlers translate this into 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registration hits the unique index
// on users.email.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateErr reports MySQL error 1062 (duplicate entry).
func isDuplicateErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isForeignKeyErr reports MySQL errors 1451/1452 (row referenced by
// or referencing another table).
func isForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "1451") || strings.Contains(err.Error(), "1452")
}
