// Package kfserrors defines the error kinds shared by every layer of
// the store (engine, S-bucket, table façade) plus the key algebra,
// kept in its own package so lower layers don't have to import the
// façade package just to return a sentinel error.
package kfserrors

import stderr "errors"

// Kind augments the standard error interface with a Wrap method, so a
// sentinel can be compared with errors.Is while still carrying a causal
// chain down to the engine-level failure that produced it.
//
// The main difference with github.com/pkg/errors is that we wrap
// sentinels from sentinels, not from text.
type Kind struct {
	msg string
	err error
}

func newKind(msg string) *Kind { return &Kind{msg: msg} }

func (k *Kind) Error() string { return k.msg }

func (k *Kind) Unwrap() error {
	if k == nil {
		return nil
	}
	return k.err
}

// Wrap returns a copy of k carrying err as its cause.
func (k *Kind) Wrap(err error) *Kind {
	return &Kind{msg: k.msg, err: err}
}

func (k *Kind) Is(target error) bool {
	other, ok := target.(*Kind)
	if !ok {
		return false
	}
	return k.msg == other.msg
}

// Error kinds named by the on-disk contract. Callers compare with
// errors.Is against these sentinels; the wrapped cause (if any) is
// available via errors.Unwrap for logging.
var (
	ErrBadKey    = newKind("bad key")
	ErrNotFound  = newKind("not found")
	ErrNoSpace   = newKind("no space")
	ErrIOError   = newKind("io error")
	ErrCancelled = newKind("cancelled")
	ErrCorrupt   = newKind("corrupt")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderr.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderr.As(err, target) }
