// Package errors provides error classification and retry support for the
// pipeline. Errors fall into four classes with distinct handling policies:
// configuration errors abort the run, storage-write failures propagate as
// fatal, storage-read failures are retried and then recovered with a safe
// default by the caller, and validation defects never surface as errors at
// all (they live in the validation flag and report).
package errors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Class categorizes an error for handling decisions.
type Class string

const (
	// ClassConfiguration marks a pipeline wiring defect. Fatal: abort the
	// run, do not guess a default.
	ClassConfiguration Class = "configuration"

	// ClassStorageRead marks a failed read of a persisted artifact.
	// Recoverable: callers fall back to a conservative default.
	ClassStorageRead Class = "storage_read"

	// ClassStorageWrite marks a failed persist. Fatal: a silent write
	// failure would corrupt the audit trail and next-run decisioning.
	ClassStorageWrite Class = "storage_write"

	// ClassInternal marks everything else.
	ClassInternal Class = "internal"
)

// ClassifiedError carries an error with its class and origin.
type ClassifiedError struct {
	Class     Class
	Component string
	Operation string
	Err       error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Component, e.Class, e.Operation, e.Err)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Is matches classified errors by class, and otherwise defers to the
// wrapped error chain.
func (e *ClassifiedError) Is(target error) bool {
	if t, ok := target.(*ClassifiedError); ok {
		return e.Class == t.Class
	}
	return errors.Is(e.Err, target)
}

// New wraps err with a class and origin. Returns nil for a nil err.
func New(class Class, component, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Class: class, Component: component, Operation: operation, Err: err}
}

// ClassOf extracts the class of an error, defaulting to ClassInternal.
func ClassOf(err error) Class {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ClassInternal
}

// IsFatal reports whether the error class requires aborting the run.
func IsFatal(err error) bool {
	switch ClassOf(err) {
	case ClassConfiguration, ClassStorageWrite:
		return true
	}
	return false
}

// RetryPolicy configures exponential-backoff retries for storage reads.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy matches the metadata-store read policy: a few quick
// attempts, then give up and let the caller apply its safe default.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}
}

// Retry runs fn with exponential backoff under the given policy, honoring
// context cancellation. The last error is returned after the attempts are
// exhausted.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialDelay
	b.MaxInterval = policy.MaxDelay

	attempts := uint64(1)
	if policy.MaxAttempts > 1 {
		attempts = uint64(policy.MaxAttempts)
	}

	return backoff.Retry(fn, backoff.WithContext(backoff.WithMaxRetries(b, attempts-1), ctx))
}
