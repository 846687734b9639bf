// Package repository holds the MySQL access for every table the service
// owns.  Sentinel errors let handlers tell "not found" apart from backend
// failures, and Classify splits backend failures into transient ones that
// are safe to retry and permanent ones that are not.
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrYachtNotFound   = errors.New("yacht not found")
	ErrItemNotFound    = errors.New("catalog item not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrCartItemMissing = errors.New("cart item not found")
	ErrSettingNotFound = errors.New("setting not found")
)

// ErrConflict is returned when a write violates a unique or foreign key
// constraint.  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// Backend failure classes.  Neither is retried automatically; the class
// only decides what the client is told.
var (
	ErrTransient = errors.New("transient backend error")
	ErrPermanent = errors.New("permanent backend error")
)

// BackendError tags a driver error with its class.
type BackendError struct {
	Class error
	Err   error
}

func (e *BackendError) Error() string { return e.Class.Error() + ": " + e.Err.Error() }

func (e *BackendError) Unwrap() []error { return []error{e.Class, e.Err} }

// MySQL server error numbers that are worth retrying.
var transientCodes = map[uint16]bool{
	1040: true, // too many connections
	1053: true, // server shutdown in progress
	1205: true, // lock wait timeout
	1213: true, // deadlock
	1317: true, // query interrupted
	2006: true, // server has gone away
	2013: true, // lost connection during query
}

// Classify wraps err in a BackendError.  nil stays nil and an error that
// is already classified is returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, ErrPermanent) {
		return err
	}
	if IsTransient(err) {
		return &BackendError{Class: ErrTransient, Err: err}
	}
	return &BackendError{Class: ErrPermanent, Err: err}
}

// IsTransient reports whether err looks like a connectivity, timeout or
// lock contention problem.
func IsTransient(err error) bool {
	if errors.Is(err, ErrTransient) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return transientCodes[me.Number]
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// isConstraint reports a unique (1062) or foreign key (1452) violation.
func isConstraint(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == 1062 || me.Number == 1452)
}
