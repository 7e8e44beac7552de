package lock

import (
	"context"
	"errors"
	"fmt"
)

// Client is the capability the dispatcher consumes to open a lock. The live
// TTLock client and the Simulator both implement it; callers never learn
// which one they hold.
type Client interface {
	Unlock(ctx context.Context, lockID string) error
}

type Kind int

const (
	KindTransient Kind = iota
	KindPermanent
)

// Error classifies an unlock failure for the retry policy. Transient errors
// (network, timeout, vendor 5xx) are worth retrying; permanent errors
// (rejected credentials, unknown lock) are not.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	kind := "transient"
	if e.Kind == KindPermanent {
		kind = "permanent"
	}
	return fmt.Sprintf("lock %s: %s: %v", e.Op, kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func Transient(op string, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

func Permanent(op string, err error) *Error {
	return &Error{Kind: KindPermanent, Op: op, Err: err}
}

// IsTransient reports whether err should be retried. Unclassified errors are
// treated as transient so that a bug in classification degrades to bounded
// retries rather than a silent drop.
func IsTransient(err error) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind == KindTransient
	}
	return true
}
