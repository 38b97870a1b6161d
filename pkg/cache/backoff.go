package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrUnavailable marks a backend failure that may succeed on a later attempt.
var ErrUnavailable = errors.New("cache backend unavailable")

// IsUnavailable reports whether err is a transient backend failure.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// unavailable tags network errors with ErrUnavailable and passes every
// other error through unchanged.
func unavailable(err error) error {
	var netErr net.Error
	if err == nil || !errors.As(err, &netErr) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Backoff retries transient backend calls. The delay doubles after every
// failed attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff is used by remote backends unless overridden.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 200 * time.Millisecond}

// Do calls fn until it succeeds, fails permanently or the attempts run out.
// Only errors matching ErrUnavailable are retried.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsUnavailable(err) || attempt == attempts {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
