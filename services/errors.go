package services

import (
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
)

// ValidationError covers malformed input caught before any persistence
// access. Handlers map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError covers an absent community, module, attachment or member.
// Handlers map it to 404. Nothing has been mutated when it is returned.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ConfigurationError means a task carried a recognized difficulty label
// but the effective points scheme has no value for it. This is a hard
// stop, not a silent zero: an unconfigured difficulty is a setup bug that
// must not under- or over-award points. Handlers map it to 422.
type ConfigurationError struct {
	ModuleID   string
	Difficulty string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no points configured for difficulty %q on module %s", e.Difficulty, e.ModuleID)
}

// ConflictError wraps a lock-wait or deadlock failure from the database.
// The whole recording chain is safe to retry: the per-day idempotence
// check makes a repeated attempt a no-op if the first one actually
// landed. Handlers map it to 409.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string { return "concurrent update conflict: " + e.Err.Error() }

func (e *ConflictError) Unwrap() error { return e.Err }

// MySQL error numbers: 1213 deadlock, 1205 lock wait timeout.
func isLockConflict(err error) bool {
	var me *mysqldriver.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}

// wrapTxError converts low-level lock contention into a ConflictError and
// passes every other error through untouched.
func wrapTxError(err error) error {
	if err == nil {
		return nil
	}
	if isLockConflict(err) {
		return &ConflictError{Err: err}
	}
	return err
}
