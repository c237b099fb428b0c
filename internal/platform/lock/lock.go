// Package lock serializes booking attempts per professional so that
// concurrent requests for the same calendar funnel through one critical
// section. The database overlap check remains authoritative; the lock
// just keeps hot calendars from burning serialization retries.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when another booking holds the lock.
var ErrNotAcquired = errors.New("professional booking lock not acquired")

// Locker runs fn while holding an exclusive per-professional lock.
type Locker interface {
	WithProfessionalLock(ctx context.Context, professional string, fn func(ctx context.Context) error) error
}

// Noop runs fn without any locking. Used when Redis is not configured;
// correctness then rests entirely on the database guard.
type Noop struct{}

func (Noop) WithProfessionalLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
