package session

import (
	"context"
	stderrors "errors"
	"time"
)

// Connection retry for networked stores.
var (
	connectAttempts = 3
	connectDelay    = 250 * time.Millisecond
)

// transientError marks a failure worth retrying, such as a refused
// connection while a backing service is still starting.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// retry runs fn up to attempts times, doubling delay after each transient
// failure. Other errors return at once. The last error is returned unwrapped.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error
	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var te *transientError
		if !stderrors.As(err, &te) {
			return err
		}
		lastErr = te.err
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
