// Package clock abstracts the current time so token issue and expiry can
// be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Real reads the system clock. Production wiring uses it everywhere a
// ports.Clock is needed.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

// Fake is a manually advanced clock. Tests pin it to a known instant and
// move it past the token lifetime to exercise expiry without sleeping.
type Fake struct {
	mu      sync.RWMutex
	current time.Time
}

// NewFake returns a fake clock pinned to t.
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

// Now returns the pinned instant.
func (f *Fake) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}
